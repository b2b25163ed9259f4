package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/repository"
    "github.com/iliyamo/airline-reservation/internal/service"
)

type FlightSearcher interface {
    Search(ctx context.Context, q repository.FlightSearchQuery) ([]repository.FlightSearchRow, int64, error)
    GetByKey(ctx context.Context, key model.FlightKey) (model.Flight, error)
}

type AvailabilityReader interface {
    Availability(ctx context.Context, key model.FlightKey) (service.Availability, error)
}

type RatingsReader interface {
    ForFlight(ctx context.Context, key model.FlightKey) (repository.FlightRatings, error)
}

type AirportLister interface {
    List(ctx context.Context) ([]model.Airport, error)
}

// PublicHandler serves the unauthenticated flight browsing API.
type PublicHandler struct {
    Flights  FlightSearcher
    Seats    AvailabilityReader
    Ratings  RatingsReader
    Airports AirportLister
    now      func() time.Time
}

func NewPublicHandler(flights FlightSearcher, seats AvailabilityReader, ratings RatingsReader, airports AirportLister) *PublicHandler {
    return &PublicHandler{Flights: flights, Seats: seats, Ratings: ratings, Airports: airports, now: time.Now}
}

// SearchFlights handles GET /v1/flights/search?from&to&date&page&page_size.
// Only flights that have not departed are returned, soonest first.
func (h *PublicHandler) SearchFlights(c echo.Context) error {
    date, hasDate, err := dateParam(c, "date")
    if err != nil {
        return fail(c, err)
    }
    page, size := pageParams(c, 5, 100)
    q := repository.FlightSearchQuery{
        From:     c.QueryParam("from"),
        To:       c.QueryParam("to"),
        Now:      h.now(),
        Page:     page,
        PageSize: size,
    }
    if hasDate {
        q.Date = &date
    }

    ctx, cancel := timeout(c)
    defer cancel()
    rows, total, err := h.Flights.Search(ctx, q)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "data":      rows,
        "total":     total,
        "page":      page,
        "page_size": size,
    })
}

// Availability handles GET /v1/flights/:airline/:number/:departure/availability.
func (h *PublicHandler) Availability(c echo.Context) error {
    key, err := flightKeyParam(c)
    if err != nil {
        return fail(c, err)
    }
    ctx, cancel := timeout(c)
    defer cancel()
    a, err := h.Seats.Availability(ctx, key)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, a)
}

// FlightRatings handles GET /v1/flights/:airline/:number/:departure/ratings.
func (h *PublicHandler) FlightRatings(c echo.Context) error {
    key, err := flightKeyParam(c)
    if err != nil {
        return fail(c, err)
    }
    ctx, cancel := timeout(c)
    defer cancel()
    if _, err := h.Flights.GetByKey(ctx, key); err != nil {
        return fail(c, err)
    }
    r, err := h.Ratings.ForFlight(ctx, key)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, r)
}

// ListAirports handles GET /v1/airports.
func (h *PublicHandler) ListAirports(c echo.Context) error {
    ctx, cancel := timeout(c)
    defer cancel()
    airports, err := h.Airports.List(ctx)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": airports})
}
