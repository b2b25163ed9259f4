package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/airline-reservation/internal/database"
    "github.com/iliyamo/airline-reservation/internal/model"
)

var ErrUsernameExists = errors.New("username already exists")

type StaffRepo struct{ DB *sqlx.DB }

func NewStaffRepo(db *sqlx.DB) *StaffRepo { return &StaffRepo{DB: db} }

// Create registers a staff member together with their phone numbers.  The
// airline row is created on first use.
func (r *StaffRepo) Create(ctx context.Context, s model.Staff) error {
    return database.WithTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
        if _, err := tx.ExecContext(ctx, `INSERT IGNORE INTO airlines (name) VALUES (?)`, s.Airline); err != nil {
            return err
        }
        _, err := tx.ExecContext(ctx,
            `INSERT INTO airline_staff (username, airline_name, email, password_hash, first_name, last_name, date_of_birth)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
            s.Username, s.Airline, strings.ToLower(strings.TrimSpace(s.Email)), s.PasswordHash,
            s.FirstName, s.LastName, s.DateOfBirth)
        if isDuplicate(err) {
            return ErrUsernameExists
        }
        if err != nil {
            return err
        }
        for _, p := range s.Phones {
            if _, err := tx.ExecContext(ctx,
                `INSERT IGNORE INTO staff_phone_numbers (username, phone_number) VALUES (?, ?)`,
                s.Username, p); err != nil {
                return err
            }
        }
        return nil
    })
}

// GetByUsername fetches a staff member and their phone numbers.  A missing
// row is reported as sql.ErrNoRows.
func (r *StaffRepo) GetByUsername(ctx context.Context, username string) (model.Staff, error) {
    var s model.Staff
    err := r.DB.QueryRowContext(ctx,
        `SELECT username, airline_name, email, password_hash, first_name, last_name, date_of_birth, created_at
           FROM airline_staff WHERE username = ? LIMIT 1`, username).Scan(
        &s.Username, &s.Airline, &s.Email, &s.PasswordHash, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.CreatedAt)
    if err != nil {
        return model.Staff{}, err
    }
    s.Phones = []string{}
    if err := r.DB.SelectContext(ctx, &s.Phones,
        `SELECT phone_number FROM staff_phone_numbers WHERE username = ? ORDER BY phone_number`, username); err != nil {
        return model.Staff{}, err
    }
    return s, nil
}
