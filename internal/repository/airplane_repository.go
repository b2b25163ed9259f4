package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/airline-reservation/internal/model"
)

// AirplaneRepo manages persistence for airplanes.  Every method is scoped
// to an airline; an airplane of another airline is reported as missing.
type AirplaneRepo struct {
    db *sqlx.DB
}

func NewAirplaneRepo(db *sqlx.DB) *AirplaneRepo { return &AirplaneRepo{db: db} }

// CapacityTx reads the seat count under a shared lock.  The lock keeps the
// capacity stable for the rest of tx while letting other flights that use
// the same airplane read it concurrently.
func (r *AirplaneRepo) CapacityTx(ctx context.Context, tx *sql.Tx, airline, id string) (int, error) {
    var seats int
    err := tx.QueryRowContext(ctx,
        `SELECT num_seats FROM airplanes WHERE airline_name = ? AND id = ? LOCK IN SHARE MODE`,
        airline, id).Scan(&seats)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, ErrAirplaneNotFound
    }
    return seats, err
}

// Get returns one airplane of the airline.
func (r *AirplaneRepo) Get(ctx context.Context, airline, id string) (model.Airplane, error) {
    var a model.Airplane
    err := r.db.GetContext(ctx, &a,
        `SELECT airline_name, id, num_seats, manufacturer, age, created_at
           FROM airplanes WHERE airline_name = ? AND id = ?`, airline, id)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Airplane{}, ErrAirplaneNotFound
    }
    return a, err
}

// ListByAirline returns the fleet ordered by id.
func (r *AirplaneRepo) ListByAirline(ctx context.Context, airline string) ([]model.Airplane, error) {
    out := []model.Airplane{}
    err := r.db.SelectContext(ctx, &out,
        `SELECT airline_name, id, num_seats, manufacturer, age, created_at
           FROM airplanes WHERE airline_name = ? ORDER BY id`, airline)
    return out, err
}

// Create inserts an airplane; a duplicate id within the airline yields
// ErrConflict.
func (r *AirplaneRepo) Create(ctx context.Context, a model.Airplane) error {
    _, err := r.db.ExecContext(ctx,
        `INSERT INTO airplanes (airline_name, id, num_seats, manufacturer, age) VALUES (?, ?, ?, ?, ?)`,
        a.Airline, a.ID, a.Seats, a.Manufacturer, a.Age)
    if isDuplicate(err) {
        return ErrConflict
    }
    return err
}
