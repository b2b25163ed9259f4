package service

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/repository"
)

type FlightWriter interface {
    GetByKey(ctx context.Context, key model.FlightKey) (model.Flight, error)
    Create(ctx context.Context, f model.Flight) error
    UpdateStatus(ctx context.Context, key model.FlightKey, status model.FlightStatus) error
}

type AirplaneReader interface {
    Get(ctx context.Context, airline, id string) (model.Airplane, error)
}

type AirportReader interface {
    Get(ctx context.Context, code string) (model.Airport, error)
}

// FlightInput is a new flight as submitted by airline staff.
type FlightInput struct {
    FlightNumber     string   `json:"flight_number"`
    Departure        string   `json:"departure"`
    Arrival          string   `json:"arrival"`
    BasePrice        *float64 `json:"base_price"`
    Status           string   `json:"status"`
    DepartureAirport string   `json:"departure_airport"`
    ArrivalAirport   string   `json:"arrival_airport"`
    AirplaneID       string   `json:"airplane_id"`
}

// FlightService applies the staff rules for scheduling flights.  Every
// operation is scoped to the airline of the calling staff member.
type FlightService struct {
    flights   FlightWriter
    airplanes AirplaneReader
    airports  AirportReader
    now       func() time.Time
}

func NewFlightService(flights FlightWriter, airplanes AirplaneReader, airports AirportReader) *FlightService {
    return &FlightService{flights: flights, airplanes: airplanes, airports: airports, now: time.Now}
}

// Create validates in and stores it as a flight of airline.
func (s *FlightService) Create(ctx context.Context, airline string, in FlightInput) (model.Flight, error) {
    number := strings.TrimSpace(in.FlightNumber)
    if number == "" {
        return model.Flight{}, invalid("flight_number", "is required")
    }
    if strings.TrimSpace(in.Departure) == "" {
        return model.Flight{}, invalid("departure", "is required")
    }
    dep, err := model.ParseTimestamp(in.Departure)
    if err != nil {
        return model.Flight{}, invalid("departure", "must be an RFC3339 timestamp")
    }
    if strings.TrimSpace(in.Arrival) == "" {
        return model.Flight{}, invalid("arrival", "is required")
    }
    arr, err := model.ParseTimestamp(in.Arrival)
    if err != nil {
        return model.Flight{}, invalid("arrival", "must be an RFC3339 timestamp")
    }
    airplaneID := strings.TrimSpace(in.AirplaneID)
    if airplaneID == "" {
        return model.Flight{}, invalid("airplane_id", "is required")
    }
    from, err := airportCode("departure_airport", in.DepartureAirport)
    if err != nil {
        return model.Flight{}, err
    }
    to, err := airportCode("arrival_airport", in.ArrivalAirport)
    if err != nil {
        return model.Flight{}, err
    }
    if in.BasePrice == nil {
        return model.Flight{}, invalid("base_price", "is required")
    }
    if *in.BasePrice < 0 {
        return model.Flight{}, invalid("base_price", "must not be negative")
    }
    status := model.StatusOnTime
    if strings.TrimSpace(in.Status) != "" {
        st, ok := model.ParseFlightStatus(in.Status)
        if !ok {
            return model.Flight{}, invalid("status", "must be on-time or delayed")
        }
        status = st
    }

    key := model.NewFlightKey(airline, number, dep)
    if err := key.Validate(); err != nil {
        return model.Flight{}, invalid("flight_number", err.Error())
    }
    arr = arr.UTC().Truncate(time.Second)
    if !arr.After(key.Departure) {
        return model.Flight{}, invalid("arrival", "must be after departure")
    }
    if key.Departure.Before(s.now()) {
        return model.Flight{}, invalid("departure", "must not be in the past")
    }

    if _, err := s.airplanes.Get(ctx, key.Airline, airplaneID); err != nil {
        return model.Flight{}, err
    }
    for _, code := range []string{from, to} {
        if _, err := s.airports.Get(ctx, code); err != nil {
            return model.Flight{}, err
        }
    }

    f := model.Flight{
        Key:              key,
        Arrival:          arr,
        BasePrice:        *in.BasePrice,
        Status:           status,
        DepartureAirport: from,
        ArrivalAirport:   to,
        AirplaneID:       airplaneID,
    }
    if err := s.flights.Create(ctx, f); err != nil {
        if errors.Is(err, repository.ErrInvalidReference) {
            return model.Flight{}, invalid("airplane_id", "unknown airplane or airport")
        }
        return model.Flight{}, err
    }
    return f, nil
}

// ChangeStatus sets the status of a flight operated by airline that has
// not departed yet.
func (s *FlightService) ChangeStatus(ctx context.Context, airline string, key model.FlightKey, status string) error {
    st, ok := model.ParseFlightStatus(status)
    if !ok {
        return invalid("status", "must be on-time or delayed")
    }
    if !strings.EqualFold(strings.TrimSpace(airline), key.Airline) {
        return ErrForbidden
    }
    f, err := s.flights.GetByKey(ctx, key)
    if err != nil {
        return err
    }
    if !f.Key.Departure.After(s.now()) {
        return invalid("status", "flight has already departed")
    }
    return s.flights.UpdateStatus(ctx, key, st)
}

func airportCode(field, v string) (string, error) {
    code := strings.ToUpper(strings.TrimSpace(v))
    if code == "" {
        return "", invalid(field, "is required")
    }
    if len(code) != 3 {
        return "", invalid(field, "must be a 3-letter airport code")
    }
    for i := 0; i < 3; i++ {
        if code[i] < 'A' || code[i] > 'Z' {
            return "", invalid(field, "must be a 3-letter airport code")
        }
    }
    return code, nil
}
