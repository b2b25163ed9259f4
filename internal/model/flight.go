package model

import (
    "errors"
    "fmt"
    "strings"
    "time"
)

// DBTimeLayout is the DATETIME layout used when flight timestamps are
// written to or read from MySQL as text.
const DBTimeLayout = "2006-01-02 15:04:05"

// FlightKey is the natural key of a flight: the operating airline, the
// flight number and the scheduled departure.  It is always carried as a
// value and never concatenated into a single string for transport; the
// HTTP layer exposes it as three separate path parameters.
type FlightKey struct {
    Airline      string    `json:"airline"`
    FlightNumber string    `json:"flight_number"`
    Departure    time.Time `json:"departure"`
}

var (
    ErrInvalidAirline      = errors.New("airline is required (max 50 characters)")
    ErrInvalidFlightNumber = errors.New("flight number is required (max 20 characters)")
    ErrInvalidDeparture    = errors.New("departure timestamp is required")
)

// accepted departure layouts; values without a zone are read as UTC.
var departureLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", DBTimeLayout}

// NewFlightKey normalises its inputs: names are trimmed and the departure
// is converted to UTC at second precision, matching what DATETIME stores.
func NewFlightKey(airline, number string, departure time.Time) FlightKey {
    return FlightKey{
        Airline:      strings.TrimSpace(airline),
        FlightNumber: strings.TrimSpace(number),
        Departure:    departure.UTC().Truncate(time.Second),
    }
}

// ParseFlightKey builds a key from its three textual components.
func ParseFlightKey(airline, number, departure string) (FlightKey, error) {
    dep, err := ParseTimestamp(departure)
    if err != nil {
        return FlightKey{}, fmt.Errorf("%w: %q", ErrInvalidDeparture, departure)
    }
    k := NewFlightKey(airline, number, dep)
    if err := k.Validate(); err != nil {
        return FlightKey{}, err
    }
    return k, nil
}

// ParseTimestamp parses RFC3339 or one of the zone-less layouts.
func ParseTimestamp(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    var lastErr error
    for _, layout := range departureLayouts {
        t, err := time.ParseInLocation(layout, s, time.UTC)
        if err == nil {
            return t.UTC(), nil
        }
        lastErr = err
    }
    return time.Time{}, lastErr
}

// Validate reports the first missing or oversized component.
func (k FlightKey) Validate() error {
    if k.Airline == "" || len(k.Airline) > 50 {
        return ErrInvalidAirline
    }
    if k.FlightNumber == "" || len(k.FlightNumber) > 20 {
        return ErrInvalidFlightNumber
    }
    if k.Departure.IsZero() {
        return ErrInvalidDeparture
    }
    return nil
}

// Equal compares keys by value; departures are compared as instants.
func (k FlightKey) Equal(o FlightKey) bool {
    return k.Airline == o.Airline && k.FlightNumber == o.FlightNumber && k.Departure.Equal(o.Departure)
}

// String is meant for log fields only.
func (k FlightKey) String() string {
    return k.Airline + "/" + k.FlightNumber + "/" + k.Departure.UTC().Format(time.RFC3339)
}

// FlightStatus is the operational state shown to passengers.
type FlightStatus string

const (
    StatusOnTime  FlightStatus = "on-time"
    StatusDelayed FlightStatus = "delayed"
)

// ParseFlightStatus accepts the two known statuses case-insensitively.
func ParseFlightStatus(s string) (FlightStatus, bool) {
    switch FlightStatus(strings.ToLower(strings.TrimSpace(s))) {
    case StatusOnTime:
        return StatusOnTime, true
    case StatusDelayed:
        return StatusDelayed, true
    }
    return "", false
}

// Flight mirrors a row of the `flights` table.
//
// Fields:
//  Key              – composite primary key (airline_name, flight_number, dep_datetime).
//  Arrival          – scheduled arrival, strictly after the departure.
//  BasePrice        – ticket price used for revenue reports.
//  Status           – on-time or delayed.
//  DepartureAirport – IATA code of the origin airport.
//  ArrivalAirport   – IATA code of the destination airport.
//  AirplaneID       – airplane of the same airline providing the capacity.
type Flight struct {
    Key              FlightKey
    Arrival          time.Time    // flights.arr_datetime
    BasePrice        float64      // flights.base_price
    Status           FlightStatus // flights.status
    DepartureAirport string       // flights.dep_airport_code
    ArrivalAirport   string       // flights.arr_airport_code
    AirplaneID       string       // flights.airplane_id
    CreatedAt        time.Time    // flights.created_at
}
