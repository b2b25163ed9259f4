package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/airline-reservation/internal/model"
)

// FlightRepo manages persistence for flights.
type FlightRepo struct {
    db *sqlx.DB
}

// NewFlightRepo returns a FlightRepo bound to db.
func NewFlightRepo(db *sqlx.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the pool so callers can open transactions spanning several
// repositories.
func (r *FlightRepo) DB() *sqlx.DB { return r.db }

const flightColumns = `airline_name, flight_number, dep_datetime, arr_datetime, base_price,
    status, dep_airport_code, arr_airport_code, airplane_id, created_at`

const flightKeyWhere = `airline_name = ? AND flight_number = ? AND dep_datetime = ?`

func keyArgs(k model.FlightKey) []any {
    return []any{k.Airline, k.FlightNumber, k.Departure.UTC()}
}

func scanFlight(row interface{ Scan(...any) error }) (model.Flight, error) {
    var (
        f      model.Flight
        status string
    )
    err := row.Scan(
        &f.Key.Airline,
        &f.Key.FlightNumber,
        &f.Key.Departure,
        &f.Arrival,
        &f.BasePrice,
        &status,
        &f.DepartureAirport,
        &f.ArrivalAirport,
        &f.AirplaneID,
        &f.CreatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return model.Flight{}, ErrFlightNotFound
    }
    if err != nil {
        return model.Flight{}, err
    }
    f.Key.Departure = f.Key.Departure.UTC()
    f.Arrival = f.Arrival.UTC()
    f.Status = model.FlightStatus(status)
    return f, nil
}

// LockByKeyTx reads the flight row with an exclusive lock held until tx
// ends.  Concurrent purchasers of the same flight queue behind this lock.
func (r *FlightRepo) LockByKeyTx(ctx context.Context, tx *sql.Tx, key model.FlightKey) (model.Flight, error) {
    q := `SELECT ` + flightColumns + ` FROM flights WHERE ` + flightKeyWhere + ` FOR UPDATE`
    return scanFlight(tx.QueryRowContext(ctx, q, keyArgs(key)...))
}

// GetByKey reads a flight without locking.
func (r *FlightRepo) GetByKey(ctx context.Context, key model.FlightKey) (model.Flight, error) {
    q := `SELECT ` + flightColumns + ` FROM flights WHERE ` + flightKeyWhere
    return scanFlight(r.db.QueryRowContext(ctx, q, keyArgs(key)...))
}

// Create inserts a new flight.  A duplicate composite key yields
// ErrConflict; an unknown airplane or airport yields ErrInvalidReference.
func (r *FlightRepo) Create(ctx context.Context, f model.Flight) error {
    const q = `INSERT INTO flights
        (airline_name, flight_number, dep_datetime, arr_datetime, base_price, status,
         dep_airport_code, arr_airport_code, airplane_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        f.Key.Airline, f.Key.FlightNumber, f.Key.Departure.UTC(), f.Arrival.UTC(), f.BasePrice,
        string(f.Status), f.DepartureAirport, f.ArrivalAirport, f.AirplaneID)
    switch {
    case isDuplicate(err):
        return ErrConflict
    case isMissingReference(err):
        return ErrInvalidReference
    }
    return err
}

// UpdateStatus sets the status of an existing flight.
func (r *FlightRepo) UpdateStatus(ctx context.Context, key model.FlightKey, status model.FlightStatus) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE flights SET status = ? WHERE `+flightKeyWhere,
        append([]any{string(status)}, keyArgs(key)...)...)
    if err != nil {
        return err
    }
    // MySQL reports 0 affected rows when the value is unchanged, so
    // existence is confirmed separately.
    if n, _ := res.RowsAffected(); n == 0 {
        if _, err := r.GetByKey(ctx, key); err != nil {
            return err
        }
    }
    return nil
}

// SeatCounts is the input of the availability calculation.
type SeatCounts struct {
    Capacity int `db:"capacity"`
    Booked   int `db:"booked"`
}

// Available is capacity minus booked, never negative.
func (s SeatCounts) Available() int {
    if s.Booked >= s.Capacity {
        return 0
    }
    return s.Capacity - s.Booked
}

// SeatCounts reads capacity and sold tickets without locks.  The result
// is informational; the purchase transaction re-reads both under lock.
func (r *FlightRepo) SeatCounts(ctx context.Context, key model.FlightKey) (SeatCounts, error) {
    const q = `SELECT a.num_seats AS capacity,
            (SELECT COUNT(*) FROM tickets t
              WHERE t.airline_name = f.airline_name
                AND t.flight_number = f.flight_number
                AND t.dep_datetime = f.dep_datetime) AS booked
        FROM flights f
        JOIN airplanes a ON a.airline_name = f.airline_name AND a.id = f.airplane_id
        WHERE f.airline_name = ? AND f.flight_number = ? AND f.dep_datetime = ?`
    var sc SeatCounts
    err := r.db.GetContext(ctx, &sc, q, keyArgs(key)...)
    if errors.Is(err, sql.ErrNoRows) {
        return SeatCounts{}, ErrFlightNotFound
    }
    return sc, err
}

// StaffFlightQuery filters the airline's own flights.
type StaffFlightQuery struct {
    Airline     string
    From        time.Time
    To          time.Time
    Source      string
    Destination string
}

// StaffFlightRow is a flight with its sales figures.
type StaffFlightRow struct {
    Airline          string    `db:"airline_name" json:"airline"`
    FlightNumber     string    `db:"flight_number" json:"flight_number"`
    Departure        time.Time `db:"dep_datetime" json:"departure"`
    Arrival          time.Time `db:"arr_datetime" json:"arrival"`
    BasePrice        float64   `db:"base_price" json:"base_price"`
    Status           string    `db:"status" json:"status"`
    DepartureAirport string    `db:"dep_airport_code" json:"departure_airport"`
    ArrivalAirport   string    `db:"arr_airport_code" json:"arrival_airport"`
    AirplaneID       string    `db:"airplane_id" json:"airplane_id"`
    TotalSeats       int       `db:"total_seats" json:"total_seats"`
    Passengers       int       `db:"passengers" json:"passengers"`
}

// ListForAirline returns flights departing in [From, To] ordered by
// departure.
func (r *FlightRepo) ListForAirline(ctx context.Context, q StaffFlightQuery) ([]StaffFlightRow, error) {
    query := `SELECT f.airline_name, f.flight_number, f.dep_datetime, f.arr_datetime, f.base_price,
            f.status, f.dep_airport_code, f.arr_airport_code, f.airplane_id,
            a.num_seats AS total_seats,
            COUNT(t.ticket_id) AS passengers
        FROM flights f
        JOIN airplanes a ON a.airline_name = f.airline_name AND a.id = f.airplane_id
        LEFT JOIN tickets t ON t.airline_name = f.airline_name
            AND t.flight_number = f.flight_number
            AND t.dep_datetime = f.dep_datetime
        WHERE f.airline_name = ? AND f.dep_datetime BETWEEN ? AND ?`
    args := []any{q.Airline, q.From.UTC(), q.To.UTC()}
    if q.Source != "" {
        query += ` AND f.dep_airport_code = ?`
        args = append(args, q.Source)
    }
    if q.Destination != "" {
        query += ` AND f.arr_airport_code = ?`
        args = append(args, q.Destination)
    }
    query += ` GROUP BY f.airline_name, f.flight_number, f.dep_datetime, f.arr_datetime, f.base_price,
            f.status, f.dep_airport_code, f.arr_airport_code, f.airplane_id, a.num_seats
        ORDER BY f.dep_datetime ASC`

    out := []StaffFlightRow{}
    if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
        return nil, fmt.Errorf("list airline flights: %w", err)
    }
    return out, nil
}
