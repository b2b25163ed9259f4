package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/airline-reservation/internal/model"
)

type AirportRepo struct {
    db *sqlx.DB
}

func NewAirportRepo(db *sqlx.DB) *AirportRepo { return &AirportRepo{db: db} }

func (r *AirportRepo) List(ctx context.Context) ([]model.Airport, error) {
    out := []model.Airport{}
    err := r.db.SelectContext(ctx, &out, `SELECT code, city, country FROM airports ORDER BY code`)
    return out, err
}

func (r *AirportRepo) Get(ctx context.Context, code string) (model.Airport, error) {
    var a model.Airport
    err := r.db.GetContext(ctx, &a, `SELECT code, city, country FROM airports WHERE code = ?`,
        strings.ToUpper(code))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Airport{}, ErrAirportNotFound
    }
    return a, err
}

func (r *AirportRepo) Create(ctx context.Context, a model.Airport) error {
    _, err := r.db.NamedExecContext(ctx,
        `INSERT INTO airports (code, city, country) VALUES (:code, :city, :country)`, a)
    if isDuplicate(err) {
        return ErrConflict
    }
    return err
}
