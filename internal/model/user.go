package model

import "time"

// Roles carried in the access token's "role" claim.
const (
    RoleCustomer = "CUSTOMER"
    RoleStaff    = "STAFF"
)

// Customer represents a row in the `customers` table.  Customers are
// identified by their email address, which is also the subject of their
// access tokens.
//
// Fields:
//  Email            – primary key, stored lower-cased.
//  PasswordHash     – bcrypt hash.
//  Name             – full name.
//  Phone            – contact number.
//  Building/Street/City/State – postal address.
//  PassportNumber   – travel document number.
//  PassportCountry  – issuing country.
//  PassportExpiry   – must lie in the future at registration.
//  DateOfBirth      – calendar date.
type Customer struct {
    Email           string    // customers.email
    PasswordHash    string    // customers.password_hash
    Name            string    // customers.name
    Phone           string    // customers.phone_number
    Building        string    // customers.building_number
    Street          string    // customers.street
    City            string    // customers.city
    State           string    // customers.state
    PassportNumber  string    // customers.passport_number
    PassportCountry string    // customers.passport_country
    PassportExpiry  time.Time // customers.passport_expiration
    DateOfBirth     time.Time // customers.date_of_birth
    CreatedAt       time.Time // customers.created_at
}

// Staff represents a row in the `airline_staff` table.  A staff member
// works for exactly one airline and may only manage that airline's
// flights and airplanes.
type Staff struct {
    Username     string    // airline_staff.username
    Airline      string    // airline_staff.airline_name
    Email        string    // airline_staff.email
    PasswordHash string    // airline_staff.password_hash
    FirstName    string    // airline_staff.first_name
    LastName     string    // airline_staff.last_name
    DateOfBirth  time.Time // airline_staff.date_of_birth
    Phones       []string  // staff_phone_numbers.phone_number
    CreatedAt    time.Time // airline_staff.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.  A token belongs to a
// principal identified by its role and subject (email or username).
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    Role      string     // refresh_tokens.principal_role
    Subject   string     // refresh_tokens.principal_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at
    CreatedAt time.Time  // refresh_tokens.created_at
}
