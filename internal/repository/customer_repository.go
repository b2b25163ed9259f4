package repository

import (
    "context"
    "errors"
    "strings"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/airline-reservation/internal/model"
)

var ErrEmailExists = errors.New("email already exists")

type CustomerRepo struct{ DB *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

// Create inserts a customer.  PasswordHash must already be set.
func (r *CustomerRepo) Create(ctx context.Context, c model.Customer) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO customers (email, password_hash, name, phone_number, building_number, street, city, state,
            passport_number, passport_country, passport_expiration, date_of_birth)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        strings.ToLower(strings.TrimSpace(c.Email)), c.PasswordHash, c.Name, c.Phone,
        c.Building, c.Street, c.City, c.State,
        c.PassportNumber, c.PassportCountry, c.PassportExpiry, c.DateOfBirth)
    if isDuplicate(err) {
        return ErrEmailExists
    }
    return err
}

// GetByEmail fetches a customer by normalized email.  A missing row is
// reported as sql.ErrNoRows.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
    var c model.Customer
    err := r.DB.QueryRowContext(ctx,
        `SELECT email, password_hash, name, phone_number, building_number, street, city, state,
                passport_number, passport_country, passport_expiration, date_of_birth, created_at
           FROM customers WHERE email = ? LIMIT 1`,
        strings.ToLower(strings.TrimSpace(email))).Scan(
        &c.Email, &c.PasswordHash, &c.Name, &c.Phone, &c.Building, &c.Street, &c.City, &c.State,
        &c.PassportNumber, &c.PassportCountry, &c.PassportExpiry, &c.DateOfBirth, &c.CreatedAt)
    if err != nil {
        return model.Customer{}, err
    }
    return c, nil
}
