package model

import "time"

// Review is a customer's rating of a flight they travelled on.  A
// customer may review the same flight more than once.
type Review struct {
    ID            uint64    // reviews.id
    CustomerEmail string    // reviews.customer_email
    Flight        FlightKey // reviews.(airline_name, flight_number, dep_datetime)
    Rating        int       // reviews.rating (1..5)
    Comment       string    // reviews.comment
    CreatedAt     time.Time // reviews.created_at
}
