// Package queue carries ticket events over RabbitMQ: the payload type, a
// publisher used after a purchase commits, and the consumer that appends
// them to the ticket log.
package queue

// TicketQueueName is the durable queue purchase events are published to.
const TicketQueueName = "ticket.purchased"

// TicketPurchasedEvent is published once a purchase transaction has
// committed.  It holds enough for downstream consumers to log or notify
// without reading the database.  Card data is limited to the type and
// the masked number.
type TicketPurchasedEvent struct {
    TicketID      string `json:"ticket_id"`
    CustomerEmail string `json:"customer_email"`
    Airline       string `json:"airline"`
    FlightNumber  string `json:"flight_number"`
    Departure     string `json:"departure"`
    CardType      string `json:"card_type"`
    CardNumber    string `json:"card_number"`
    PurchasedAt   string `json:"purchased_at"`
}
