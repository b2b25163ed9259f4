package repository

import (
    "context"
    "database/sql"
    "os"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/jmoiron/sqlx"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/airline-reservation/internal/database"
    "github.com/iliyamo/airline-reservation/internal/model"
)

// Set MYSQL_TEST_DSN to run these against a scratch database.

type world struct {
    db      *sqlx.DB
    airline string
    email   string
    past    model.FlightKey
    future  model.FlightKey
}

func newWorld(t *testing.T) world {
    t.Helper()
    dsn := os.Getenv("MYSQL_TEST_DSN")
    if dsn == "" {
        t.Skip("MYSQL_TEST_DSN not set")
    }
    ctx := context.Background()
    db, err := database.OpenDSN(ctx, dsn)
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    require.NoError(t, database.Migrate(ctx, db))

    w := world{db: db, airline: "R-" + uuid.NewString()[:8], email: uuid.NewString()[:8] + "@example.com"}
    now := time.Now().UTC().Truncate(time.Second)
    w.past = model.NewFlightKey(w.airline, "R1", now.AddDate(0, 0, -3))
    w.future = model.NewFlightKey(w.airline, "R2", now.AddDate(0, 0, 10))

    require.NoError(t, NewStaffRepo(db).Create(ctx, model.Staff{
        Airline: w.airline, Username: "u-" + w.airline, Email: "ops@example.com", PasswordHash: "x",
        FirstName: "O", LastName: "P", DateOfBirth: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
        Phones: []string{"555 0100", "555 0101"},
    }))
    for _, code := range []string{"PVG", "JFK"} {
        if err := NewAirportRepo(db).Create(ctx, model.Airport{Code: code, City: code + " city", Country: "Test"}); err != nil {
            require.ErrorIs(t, err, ErrConflict)
        }
    }
    require.NoError(t, NewAirplaneRepo(db).Create(ctx, model.Airplane{Airline: w.airline, ID: "P1", Seats: 3, Manufacturer: "Test"}))
    for _, k := range []model.FlightKey{w.past, w.future} {
        require.NoError(t, NewFlightRepo(db).Create(ctx, model.Flight{
            Key: k, Arrival: k.Departure.Add(3 * time.Hour), BasePrice: 250, Status: model.StatusOnTime,
            DepartureAirport: "PVG", ArrivalAirport: "JFK", AirplaneID: "P1",
        }))
    }
    require.NoError(t, NewCustomerRepo(db).Create(ctx, model.Customer{
        Email: w.email, PasswordHash: "x", Name: "C", Phone: "5550000000", PassportNumber: "P",
        PassportCountry: "T", PassportExpiry: now.AddDate(5, 0, 0), DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
    }))
    return w
}

func (w world) buy(t *testing.T, key model.FlightKey) string {
    t.Helper()
    id := uuid.NewString()
    err := database.WithTx(context.Background(), w.db, nil, func(tx *sql.Tx) error {
        return NewTicketRepo(w.db).InsertTx(context.Background(), tx, model.Ticket{
            ID: id, CustomerEmail: w.email, Flight: key, PurchasedAt: time.Now().UTC(),
            CardType: "credit", CardNumber: model.MaskCardNumber("4242424242424242"), NameOnCard: "C", Expiration: "12/39",
        })
    })
    require.NoError(t, err)
    return id
}

func TestFlightCreateConstraints(t *testing.T) {
    w := newWorld(t)
    flights := NewFlightRepo(w.db)
    ctx := context.Background()

    f, err := flights.GetByKey(ctx, w.future)
    require.NoError(t, err)
    assert.True(t, f.Key.Equal(w.future))
    assert.Equal(t, model.StatusOnTime, f.Status)

    dup := model.Flight{Key: w.future, Arrival: w.future.Departure.Add(time.Hour), DepartureAirport: "PVG",
        ArrivalAirport: "JFK", AirplaneID: "P1", Status: model.StatusOnTime}
    assert.ErrorIs(t, flights.Create(ctx, dup), ErrConflict)

    dup.Key = model.NewFlightKey(w.airline, "R9", w.future.Departure)
    dup.AirplaneID = "missing"
    assert.ErrorIs(t, flights.Create(ctx, dup), ErrInvalidReference)

    require.NoError(t, flights.UpdateStatus(ctx, w.future, model.StatusDelayed))
    require.NoError(t, flights.UpdateStatus(ctx, w.future, model.StatusDelayed))
    assert.ErrorIs(t, flights.UpdateStatus(ctx, model.NewFlightKey(w.airline, "NOPE", w.future.Departure), model.StatusDelayed),
        ErrFlightNotFound)
}

func TestTicketQueries(t *testing.T) {
    w := newWorld(t)
    tickets := NewTicketRepo(w.db)
    ctx := context.Background()
    id := w.buy(t, w.future)

    counts, err := NewFlightRepo(w.db).SeatCounts(ctx, w.future)
    require.NoError(t, err)
    assert.Equal(t, SeatCounts{Capacity: 3, Booked: 1}, counts)

    has, err := tickets.HasTicket(ctx, w.email, w.future)
    require.NoError(t, err)
    assert.True(t, has)
    has, err = tickets.HasTicket(ctx, w.email, w.past)
    require.NoError(t, err)
    assert.False(t, has)

    rows, err := tickets.ListByCustomer(ctx, CustomerTicketQuery{Email: w.email})
    require.NoError(t, err)
    require.Len(t, rows, 1)
    assert.Equal(t, "************4242", rows[0].CardNumber)

    rows, err = tickets.ListByCustomer(ctx, CustomerTicketQuery{Email: w.email, To: w.past.Departure})
    require.NoError(t, err)
    assert.Empty(t, rows)

    _, err = tickets.GetForCustomer(ctx, id, "someone@example.com")
    assert.ErrorIs(t, err, ErrTicketNotFound)

    pax, err := tickets.ListPassengers(ctx, w.future)
    require.NoError(t, err)
    require.Len(t, pax, 1)
    assert.Equal(t, w.email, pax[0].Email)

    staff, err := NewFlightRepo(w.db).ListForAirline(ctx, StaffFlightQuery{
        Airline: w.airline, From: w.past.Departure.AddDate(0, 0, -1), To: w.future.Departure.AddDate(0, 0, 1),
    })
    require.NoError(t, err)
    require.Len(t, staff, 2)
    assert.Equal(t, 1, staff[1].Passengers)
    assert.Equal(t, 3, staff[1].TotalSeats)
}

func TestReviewsAndRatings(t *testing.T) {
    w := newWorld(t)
    reviews := NewReviewRepo(w.db)
    ctx := context.Background()

    for _, r := range []int{4, 5} {
        _, err := reviews.Create(ctx, model.Review{CustomerEmail: w.email, Flight: w.past, Rating: r, CreatedAt: time.Now()})
        require.NoError(t, err)
    }
    got, err := reviews.ForFlight(ctx, w.past)
    require.NoError(t, err)
    assert.Equal(t, 2, got.Total)
    assert.InDelta(t, 4.5, got.Average, 0.001)

    mine, err := reviews.ListByCustomer(ctx, w.email)
    require.NoError(t, err)
    assert.Len(t, mine, 2)

    _, err = reviews.Create(ctx, model.Review{CustomerEmail: w.email,
        Flight: model.NewFlightKey(w.airline, "NOPE", w.past.Departure), Rating: 3, CreatedAt: time.Now()})
    assert.ErrorIs(t, err, ErrFlightNotFound)
}

func TestMonthlySales(t *testing.T) {
    w := newWorld(t)
    w.buy(t, w.future)
    w.buy(t, w.future)

    rep, err := NewReportRepo(w.db).MonthlySales(context.Background(), w.airline, time.Time{}, time.Time{})
    require.NoError(t, err)
    assert.Equal(t, 2, rep.Total.Tickets)
    assert.InDelta(t, 500, rep.Total.Revenue, 0.001)
    require.Len(t, rep.Monthly, 1)
    assert.Equal(t, time.Now().UTC().Format("2006-01"), rep.Monthly[0].Month)
}

func TestRefreshTokenLifecycle(t *testing.T) {
    w := newWorld(t)
    tokens := NewTokenRepo(w.db)
    ctx := context.Background()
    hash := uuid.NewString() + uuid.NewString()[:28]

    require.NoError(t, tokens.StoreRefresh(ctx, model.RoleCustomer, w.email, hash, time.Now().Add(time.Hour)))
    role, subject, err := tokens.ValidateRefresh(ctx, hash)
    require.NoError(t, err)
    assert.Equal(t, model.RoleCustomer, role)
    assert.Equal(t, w.email, subject)

    require.NoError(t, tokens.RevokeAll(ctx, model.RoleCustomer, w.email))
    _, _, err = tokens.ValidateRefresh(ctx, hash)
    assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestStaffPhones(t *testing.T) {
    w := newWorld(t)
    s, err := NewStaffRepo(w.db).GetByUsername(context.Background(), "u-"+w.airline)
    require.NoError(t, err)
    assert.Equal(t, []string{"555 0100", "555 0101"}, s.Phones)

    err = NewStaffRepo(w.db).Create(context.Background(), s)
    assert.ErrorIs(t, err, ErrUsernameExists)
}
