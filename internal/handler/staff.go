package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/repository"
    "github.com/iliyamo/airline-reservation/internal/service"
)

type FlightScheduler interface {
    Create(ctx context.Context, airline string, in service.FlightInput) (model.Flight, error)
    ChangeStatus(ctx context.Context, airline string, key model.FlightKey, status string) error
}

type StaffFlightLister interface {
    ListForAirline(ctx context.Context, q repository.StaffFlightQuery) ([]repository.StaffFlightRow, error)
}

type PassengerLister interface {
    ListPassengers(ctx context.Context, key model.FlightKey) ([]repository.PassengerRow, error)
}

type FleetStore interface {
    ListByAirline(ctx context.Context, airline string) ([]model.Airplane, error)
    Create(ctx context.Context, a model.Airplane) error
}

type AirportCreator interface {
    Create(ctx context.Context, a model.Airport) error
}

type SalesReporter interface {
    MonthlySales(ctx context.Context, airline string, from, to time.Time) (repository.SalesReport, error)
}

// StaffHandler serves the airline staff API.  Every endpoint is scoped to
// the airline carried in the caller's token.
type StaffHandler struct {
    Scheduler  FlightScheduler
    Flights    StaffFlightLister
    Manifest   PassengerLister
    Fleet      FleetStore
    Airports   AirportCreator
    Reports    SalesReporter
    now        func() time.Time
}

func NewStaffHandler(scheduler FlightScheduler, flights StaffFlightLister, passengers PassengerLister,
    fleet FleetStore, airports AirportCreator, reports SalesReporter) *StaffHandler {
    return &StaffHandler{
        Scheduler:  scheduler,
        Flights:    flights,
        Manifest:   passengers,
        Fleet:      fleet,
        Airports:   airports,
        Reports:    reports,
        now:        time.Now,
    }
}

// ListFlights handles GET /v1/staff/flights?from&to&source&destination.
// Without dates the window is the next 30 days.
func (h *StaffHandler) ListFlights(c echo.Context) error {
    from, hasFrom, err := dateParam(c, "from")
    if err != nil {
        return fail(c, err)
    }
    to, hasTo, err := dateParam(c, "to")
    if err != nil {
        return fail(c, err)
    }
    now := h.now().UTC()
    if !hasFrom {
        from = now
    }
    if hasTo {
        to = to.Add(24*time.Hour - time.Second)
    } else {
        to = from.AddDate(0, 0, 30)
    }
    if to.Before(from) {
        return badRequest(c, "to", "must not be before from")
    }

    ctx, cancel := timeout(c)
    defer cancel()
    rows, err := h.Flights.ListForAirline(ctx, repository.StaffFlightQuery{
        Airline:     principal(c).Airline,
        From:        from,
        To:          to,
        Source:      strings.TrimSpace(c.QueryParam("source")),
        Destination: strings.TrimSpace(c.QueryParam("destination")),
    })
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// CreateFlight handles POST /v1/staff/flights.
func (h *StaffHandler) CreateFlight(c echo.Context) error {
    var in service.FlightInput
    if err := c.Bind(&in); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    ctx, cancel := timeout(c)
    defer cancel()
    f, err := h.Scheduler.Create(ctx, principal(c).Airline, in)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "airline":           f.Key.Airline,
        "flight_number":     f.Key.FlightNumber,
        "departure":         f.Key.Departure,
        "arrival":           f.Arrival,
        "base_price":        f.BasePrice,
        "status":            f.Status,
        "departure_airport": f.DepartureAirport,
        "arrival_airport":   f.ArrivalAirport,
        "airplane_id":       f.AirplaneID,
    })
}

type statusReq struct {
    Status string `json:"status"`
}

// ChangeStatus handles PATCH /v1/staff/flights/:airline/:number/:departure/status.
func (h *StaffHandler) ChangeStatus(c echo.Context) error {
    key, err := flightKeyParam(c)
    if err != nil {
        return fail(c, err)
    }
    var req statusReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    ctx, cancel := timeout(c)
    defer cancel()
    if err := h.Scheduler.ChangeStatus(ctx, principal(c).Airline, key, req.Status); err != nil {
        return fail(c, err)
    }
    st, _ := model.ParseFlightStatus(req.Status)
    return c.JSON(http.StatusOK, echo.Map{"flight": key, "status": st})
}

// Passengers handles GET /v1/staff/flights/:airline/:number/:departure/passengers.
func (h *StaffHandler) Passengers(c echo.Context) error {
    key, err := flightKeyParam(c)
    if err != nil {
        return fail(c, err)
    }
    if !strings.EqualFold(key.Airline, principal(c).Airline) {
        return fail(c, service.ErrForbidden)
    }
    ctx, cancel := timeout(c)
    defer cancel()
    rows, err := h.Manifest.ListPassengers(ctx, key)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"flight": key, "items": rows})
}

// ListAirplanes handles GET /v1/staff/airplanes.
func (h *StaffHandler) ListAirplanes(c echo.Context) error {
    ctx, cancel := timeout(c)
    defer cancel()
    planes, err := h.Fleet.ListByAirline(ctx, principal(c).Airline)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": planes})
}

type airplaneReq struct {
    ID           string `json:"id" validate:"required,max=20"`
    Seats        int    `json:"seats" validate:"gt=0"`
    Manufacturer string `json:"manufacturer" validate:"required,max=100"`
    Age          int    `json:"age" validate:"gte=0"`
}

// CreateAirplane handles POST /v1/staff/airplanes.
func (h *StaffHandler) CreateAirplane(c echo.Context) error {
    var req airplaneReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    req.ID = strings.TrimSpace(req.ID)
    req.Manufacturer = strings.TrimSpace(req.Manufacturer)
    if err := c.Validate(&req); err != nil {
        return fail(c, err)
    }
    a := model.Airplane{
        Airline:      principal(c).Airline,
        ID:           req.ID,
        Seats:        req.Seats,
        Manufacturer: req.Manufacturer,
        Age:          req.Age,
    }

    ctx, cancel := timeout(c)
    defer cancel()
    if err := h.Fleet.Create(ctx, a); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, a)
}

type airportReq struct {
    Code    string `json:"code" validate:"required,len=3,alpha"`
    City    string `json:"city" validate:"required,max=100"`
    Country string `json:"country" validate:"required,max=100"`
}

// CreateAirport handles POST /v1/staff/airports.
func (h *StaffHandler) CreateAirport(c echo.Context) error {
    var req airportReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
    req.City = strings.TrimSpace(req.City)
    req.Country = strings.TrimSpace(req.Country)
    if err := c.Validate(&req); err != nil {
        return fail(c, err)
    }
    a := model.Airport(req)

    ctx, cancel := timeout(c)
    defer cancel()
    if err := h.Airports.Create(ctx, a); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, a)
}

// SalesReport handles GET /v1/staff/reports/sales?from=YYYY-MM&to=YYYY-MM.
// Both months are inclusive.
func (h *StaffHandler) SalesReport(c echo.Context) error {
    from, err := monthParam(c, "from")
    if err != nil {
        return fail(c, err)
    }
    to, err := monthParam(c, "to")
    if err != nil {
        return fail(c, err)
    }
    if !to.IsZero() {
        to = to.AddDate(0, 1, 0)
    }
    if !from.IsZero() && !to.IsZero() && !to.After(from) {
        return badRequest(c, "to", "must not be before from")
    }

    ctx, cancel := timeout(c)
    defer cancel()
    rep, err := h.Reports.MonthlySales(ctx, principal(c).Airline, from, to)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, rep)
}

func monthParam(c echo.Context, name string) (time.Time, error) {
    v := strings.TrimSpace(c.QueryParam(name))
    if v == "" {
        return time.Time{}, nil
    }
    t, err := time.ParseInLocation("2006-01", v, time.UTC)
    if err != nil {
        return time.Time{}, &service.FieldError{Field: name, Message: "must be YYYY-MM"}
    }
    return t, nil
}
