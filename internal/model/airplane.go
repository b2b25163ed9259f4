package model

import "time"

// Airplane represents a row in the `airplanes` table.  An airplane is
// owned by exactly one airline and is identified by the pair
// (airline_name, id).  Its Seats value is the capacity used by the
// purchase transaction when deciding whether a flight is sold out.
type Airplane struct {
    Airline      string    `json:"airline" db:"airline_name"`
    ID           string    `json:"id" db:"id"`
    Seats        int       `json:"seats" db:"num_seats"`
    Manufacturer string    `json:"manufacturer" db:"manufacturer"`
    Age          int       `json:"age" db:"age"`
    CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Airport represents a row in the `airports` table.
type Airport struct {
    Code    string `json:"code" db:"code"`
    City    string `json:"city" db:"city"`
    Country string `json:"country" db:"country"`
}
