package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/airline-reservation/internal/model"
)

// TicketRepo provides access to sold tickets.  Inserts only happen inside
// the purchase transaction via InsertTx; there is no update or delete.
type TicketRepo struct {
    db *sqlx.DB
}

func NewTicketRepo(db *sqlx.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `ticket_id, customer_email, airline_name, flight_number, dep_datetime,
    purchased_at, card_type, card_number, name_on_card, card_expiration`

func scanTicket(row interface{ Scan(...any) error }) (model.Ticket, error) {
    var t model.Ticket
    err := row.Scan(
        &t.ID,
        &t.CustomerEmail,
        &t.Flight.Airline,
        &t.Flight.FlightNumber,
        &t.Flight.Departure,
        &t.PurchasedAt,
        &t.CardType,
        &t.CardNumber,
        &t.NameOnCard,
        &t.Expiration,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return model.Ticket{}, ErrTicketNotFound
    }
    if err != nil {
        return model.Ticket{}, err
    }
    t.Flight.Departure = t.Flight.Departure.UTC()
    t.PurchasedAt = t.PurchasedAt.UTC()
    return t, nil
}

// CountForFlightTx counts the flight's tickets and locks every counted row
// until tx ends.
func (r *TicketRepo) CountForFlightTx(ctx context.Context, tx *sql.Tx, key model.FlightKey) (int, error) {
    var n int
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM tickets WHERE `+flightKeyWhere+` FOR UPDATE`,
        keyArgs(key)...).Scan(&n)
    return n, err
}

// InsertTx stores a ticket.  The card number must already be masked.  A
// duplicate ticket id yields ErrConflict.
func (r *TicketRepo) InsertTx(ctx context.Context, tx *sql.Tx, t model.Ticket) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO tickets (`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        t.ID, t.CustomerEmail, t.Flight.Airline, t.Flight.FlightNumber, t.Flight.Departure.UTC(),
        t.PurchasedAt.UTC(), t.CardType, t.CardNumber, t.NameOnCard, t.Expiration)
    if isDuplicate(err) {
        return ErrConflict
    }
    return err
}

// GetByID reads a ticket regardless of owner.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (model.Ticket, error) {
    return scanTicket(r.db.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id = ?`, id))
}

// HasTicket reports whether the customer holds a ticket for the flight.
func (r *TicketRepo) HasTicket(ctx context.Context, email string, key model.FlightKey) (bool, error) {
    var n int
    err := r.db.GetContext(ctx, &n,
        `SELECT COUNT(*) FROM tickets WHERE customer_email = ? AND `+flightKeyWhere,
        append([]any{email}, keyArgs(key)...)...)
    return n > 0, err
}

// CustomerTicketRow is a ticket joined with its flight, as shown to the
// customer who bought it.
type CustomerTicketRow struct {
    TicketID         string    `db:"ticket_id" json:"ticket_id"`
    Airline          string    `db:"airline_name" json:"airline"`
    FlightNumber     string    `db:"flight_number" json:"flight_number"`
    Departure        time.Time `db:"dep_datetime" json:"departure"`
    Arrival          time.Time `db:"arr_datetime" json:"arrival"`
    DepartureAirport string    `db:"dep_airport_code" json:"departure_airport"`
    ArrivalAirport   string    `db:"arr_airport_code" json:"arrival_airport"`
    Status           string    `db:"status" json:"status"`
    BasePrice        float64   `db:"base_price" json:"price"`
    PurchasedAt      time.Time `db:"purchased_at" json:"purchased_at"`
    CardType         string    `db:"card_type" json:"card_type"`
    CardNumber       string    `db:"card_number" json:"card_number"`
}

// CustomerTicketQuery narrows a customer's tickets by departure date.
// Zero bounds are ignored.
type CustomerTicketQuery struct {
    Email string
    From  time.Time
    To    time.Time
}

const customerTicketSelect = `SELECT t.ticket_id, t.airline_name, t.flight_number, t.dep_datetime,
        f.arr_datetime, f.dep_airport_code, f.arr_airport_code, f.status, f.base_price,
        t.purchased_at, t.card_type, t.card_number
    FROM tickets t
    JOIN flights f ON f.airline_name = t.airline_name
        AND f.flight_number = t.flight_number
        AND f.dep_datetime = t.dep_datetime`

// ListByCustomer returns the customer's tickets ordered by departure.
func (r *TicketRepo) ListByCustomer(ctx context.Context, q CustomerTicketQuery) ([]CustomerTicketRow, error) {
    query := customerTicketSelect + ` WHERE t.customer_email = ?`
    args := []any{q.Email}
    if !q.From.IsZero() {
        query += ` AND t.dep_datetime >= ?`
        args = append(args, q.From.UTC())
    }
    if !q.To.IsZero() {
        query += ` AND t.dep_datetime <= ?`
        args = append(args, q.To.UTC())
    }
    query += ` ORDER BY t.dep_datetime ASC, t.ticket_id ASC`

    out := []CustomerTicketRow{}
    err := r.db.SelectContext(ctx, &out, query, args...)
    return out, err
}

// GetForCustomer returns one ticket only if email owns it.
func (r *TicketRepo) GetForCustomer(ctx context.Context, id, email string) (CustomerTicketRow, error) {
    var row CustomerTicketRow
    err := r.db.GetContext(ctx, &row,
        customerTicketSelect+` WHERE t.ticket_id = ? AND t.customer_email = ?`, id, email)
    if errors.Is(err, sql.ErrNoRows) {
        return CustomerTicketRow{}, ErrTicketNotFound
    }
    return row, err
}

// PassengerRow is one passenger on a flight manifest.
type PassengerRow struct {
    TicketID    string    `db:"ticket_id" json:"ticket_id"`
    Email       string    `db:"email" json:"email"`
    Name        string    `db:"name" json:"name"`
    PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
}

// ListPassengers returns the flight's passengers in purchase order.
func (r *TicketRepo) ListPassengers(ctx context.Context, key model.FlightKey) ([]PassengerRow, error) {
    out := []PassengerRow{}
    err := r.db.SelectContext(ctx, &out,
        `SELECT t.ticket_id, c.email, c.name, t.purchased_at
           FROM tickets t
           JOIN customers c ON c.email = t.customer_email
          WHERE t.airline_name = ? AND t.flight_number = ? AND t.dep_datetime = ?
          ORDER BY t.purchased_at, t.ticket_id`,
        keyArgs(key)...)
    return out, err
}
