package model

import (
    "strings"
    "time"
)

// Ticket is a sold seat on a flight.  Tickets are only ever created by the
// purchase transaction and are immutable afterwards.  The card number is
// stored masked; only the last four digits are kept in clear.
type Ticket struct {
    ID            string    // tickets.ticket_id (UUID)
    CustomerEmail string    // tickets.customer_email
    Flight        FlightKey // tickets.(airline_name, flight_number, dep_datetime)
    PurchasedAt   time.Time // tickets.purchased_at
    CardType      string    // tickets.card_type (credit | debit)
    CardNumber    string    // tickets.card_number (masked)
    NameOnCard    string    // tickets.name_on_card
    Expiration    string    // tickets.card_expiration (MM/YY)
}

// MaskCardNumber replaces every character except the last four with '*'.
// Numbers of four digits or fewer are fully masked.
func MaskCardNumber(number string) string {
    if len(number) <= 4 {
        return strings.Repeat("*", len(number))
    }
    return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
