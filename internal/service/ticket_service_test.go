package service

import (
    "context"
    "database/sql"
    "errors"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"
    "github.com/sirupsen/logrus/hooks/test"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/mock"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/airline-reservation/internal/database/dbtest"
    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/queue"
    "github.com/iliyamo/airline-reservation/internal/repository"
)

var (
    testNow    = time.Date(2030, 3, 15, 12, 0, 0, 0, time.UTC)
    testFlight = model.NewFlightKey("China Eastern", "MU587", time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC))
    fixedID    = uuid.MustParse("018f3c1e-7b7a-7cc0-9a65-4a9c2f1d3e01")
)

func validPayment() PaymentInput {
    return PaymentInput{
        CardType:   "Credit",
        CardNumber: "4242 4242 4242 4242",
        NameOnCard: "Ada Lovelace",
        Expiration: "12/31",
    }
}

type ticketFixture struct {
    svc       *TicketService
    rec       *dbtest.Recorder
    flights   *mockFlights
    airplanes *mockAirplanes
    tickets   *mockTickets
    publisher *mockPublisher
}

func newTicketFixture(t *testing.T) *ticketFixture {
    t.Helper()
    db, rec := dbtest.Open(t)
    logger, _ := test.NewNullLogger()
    f := &ticketFixture{
        rec:       rec,
        flights:   &mockFlights{},
        airplanes: &mockAirplanes{},
        tickets:   &mockTickets{},
        publisher: &mockPublisher{},
    }
    f.svc = NewTicketService(db, f.flights, f.airplanes, f.tickets, f.publisher, logrus.NewEntry(logger))
    f.svc.now = fixedClock(testNow)
    f.svc.newID = func() (uuid.UUID, error) { return fixedID, nil }
    return f
}

func (f *ticketFixture) assertExpectations(t *testing.T) {
    f.flights.AssertExpectations(t)
    f.airplanes.AssertExpectations(t)
    f.tickets.AssertExpectations(t)
    f.publisher.AssertExpectations(t)
}

func request() PurchaseRequest {
    return PurchaseRequest{Customer: "ada@example.com", Flight: testFlight, Payment: validPayment()}
}

func TestPurchaseSucceeds(t *testing.T) {
    f := newTicketFixture(t)
    flight := model.Flight{Key: testFlight, AirplaneID: "B737-1"}

    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2, Booked: 1}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(flight, nil)
    f.airplanes.On("CapacityTx", mock.Anything, mock.Anything, "China Eastern", "B737-1").Return(2, nil)
    f.tickets.On("CountForFlightTx", mock.Anything, mock.Anything, testFlight).Return(1, nil)
    f.tickets.On("InsertTx", mock.Anything, mock.Anything, mock.MatchedBy(func(tk model.Ticket) bool {
        return tk.ID == fixedID.String() &&
            tk.CardNumber == "************4242" &&
            tk.CardType == "credit" &&
            tk.CustomerEmail == "ada@example.com" &&
            tk.PurchasedAt.Equal(testNow)
    })).Return(nil)
    f.publisher.On("PublishTicketPurchased", mock.Anything, mock.MatchedBy(func(ev queue.TicketPurchasedEvent) bool {
        return ev.TicketID == fixedID.String() && ev.CardNumber == "************4242"
    })).Return(nil)

    r, err := f.svc.Purchase(context.Background(), request())
    require.NoError(t, err)
    assert.False(t, r.Replayed)
    assert.Equal(t, fixedID.String(), r.Ticket.ID)
    assert.True(t, r.Ticket.Flight.Equal(testFlight))

    begins, commits, rollbacks := f.rec.Counts()
    assert.Equal(t, 1, begins)
    assert.Equal(t, 1, commits)
    assert.Equal(t, 0, rollbacks)
    f.assertExpectations(t)
}

func TestPurchaseUsesReadCommitted(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 1}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(model.Flight{Key: testFlight, AirplaneID: "A"}, nil)
    f.airplanes.On("CapacityTx", mock.Anything, mock.Anything, mock.Anything, "A").Return(1, nil)
    f.tickets.On("CountForFlightTx", mock.Anything, mock.Anything, testFlight).Return(0, nil)
    f.tickets.On("InsertTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
    f.publisher.On("PublishTicketPurchased", mock.Anything, mock.Anything).Return(nil)

    _, err := f.svc.Purchase(context.Background(), request())
    require.NoError(t, err)
    assert.Equal(t, sql.LevelReadCommitted, f.rec.Isolation())
}

func TestPurchaseValidationHasNoSideEffects(t *testing.T) {
    cases := []struct {
        name  string
        edit  func(*PaymentInput)
        field string
    }{
        {"short card number", func(p *PaymentInput) { p.CardNumber = "12345" }, "cardNumber"},
        {"month thirteen", func(p *PaymentInput) { p.Expiration = "13/99" }, "expiration"},
        {"expired card", func(p *PaymentInput) { p.Expiration = "01/20" }, "expiration"},
        {"unknown card type", func(p *PaymentInput) { p.CardType = "gift" }, "cardType"},
        {"missing name", func(p *PaymentInput) { p.NameOnCard = "  " }, "nameOnCard"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            f := newTicketFixture(t)
            req := request()
            tc.edit(&req.Payment)

            _, err := f.svc.Purchase(context.Background(), req)
            assert.Equal(t, KindValidation, Kind(err))
            assert.Equal(t, tc.field, Field(err))

            begins, _, _ := f.rec.Counts()
            assert.Zero(t, begins)
            f.flights.AssertNotCalled(t, "SeatCounts", mock.Anything, mock.Anything)
            f.tickets.AssertNotCalled(t, "InsertTx", mock.Anything, mock.Anything, mock.Anything)
        })
    }
}

func TestPurchaseUnknownFlight(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{}, repository.ErrFlightNotFound)

    _, err := f.svc.Purchase(context.Background(), request())
    assert.ErrorIs(t, err, ErrFlightNotFound)
    assert.Equal(t, KindNotFound, Kind(err))

    begins, _, _ := f.rec.Counts()
    assert.Zero(t, begins)
}

func TestPurchaseFlightVanishesBeforeLock(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 3}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(model.Flight{}, repository.ErrFlightNotFound)

    _, err := f.svc.Purchase(context.Background(), request())
    assert.Equal(t, KindNotFound, Kind(err))

    _, commits, rollbacks := f.rec.Counts()
    assert.Zero(t, commits)
    assert.Equal(t, 1, rollbacks)
    f.publisher.AssertNotCalled(t, "PublishTicketPurchased", mock.Anything, mock.Anything)
}

func TestPurchaseSoldOutPreCheck(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2, Booked: 2}, nil)

    _, err := f.svc.Purchase(context.Background(), request())
    assert.ErrorIs(t, err, ErrSoldOut)
    assert.Equal(t, KindSoldOut, Kind(err))

    begins, _, _ := f.rec.Counts()
    assert.Zero(t, begins)
}

func TestPurchaseSoldOutUnderLock(t *testing.T) {
    f := newTicketFixture(t)
    // the unlocked read saw a free seat; a concurrent buyer took it
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2, Booked: 1}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(model.Flight{Key: testFlight, AirplaneID: "A"}, nil)
    f.airplanes.On("CapacityTx", mock.Anything, mock.Anything, "China Eastern", "A").Return(2, nil)
    f.tickets.On("CountForFlightTx", mock.Anything, mock.Anything, testFlight).Return(2, nil)

    _, err := f.svc.Purchase(context.Background(), request())
    assert.ErrorIs(t, err, ErrSoldOut)

    _, commits, rollbacks := f.rec.Counts()
    assert.Zero(t, commits)
    assert.Equal(t, 1, rollbacks)
    f.tickets.AssertNotCalled(t, "InsertTx", mock.Anything, mock.Anything, mock.Anything)
    f.publisher.AssertNotCalled(t, "PublishTicketPurchased", mock.Anything, mock.Anything)
}

func TestPurchaseInsertFailureRollsBack(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(model.Flight{Key: testFlight, AirplaneID: "A"}, nil)
    f.airplanes.On("CapacityTx", mock.Anything, mock.Anything, mock.Anything, "A").Return(2, nil)
    f.tickets.On("CountForFlightTx", mock.Anything, mock.Anything, testFlight).Return(0, nil)
    f.tickets.On("InsertTx", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

    _, err := f.svc.Purchase(context.Background(), request())
    assert.Equal(t, KindInternal, Kind(err))

    _, commits, rollbacks := f.rec.Counts()
    assert.Zero(t, commits)
    assert.Equal(t, 1, rollbacks)
}

func TestPurchaseMissingAirplaneIsInternal(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(model.Flight{Key: testFlight, AirplaneID: "A"}, nil)
    f.airplanes.On("CapacityTx", mock.Anything, mock.Anything, mock.Anything, "A").Return(0, repository.ErrAirplaneNotFound)

    _, err := f.svc.Purchase(context.Background(), request())
    assert.Equal(t, KindInternal, Kind(err))
}

func TestPurchasePublishFailureIsIgnored(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(model.Flight{Key: testFlight, AirplaneID: "A"}, nil)
    f.airplanes.On("CapacityTx", mock.Anything, mock.Anything, mock.Anything, "A").Return(2, nil)
    f.tickets.On("CountForFlightTx", mock.Anything, mock.Anything, testFlight).Return(0, nil)
    f.tickets.On("InsertTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
    f.publisher.On("PublishTicketPurchased", mock.Anything, mock.Anything).Return(errors.New("broker down"))

    _, err := f.svc.Purchase(context.Background(), request())
    assert.NoError(t, err)
}

func TestPurchaseReplaysIdempotentRequest(t *testing.T) {
    f := newTicketFixture(t)
    key := "018f3c1e-7b7a-7cc0-9a65-4a9c2f1d3eff"
    stored := model.Ticket{ID: key, CustomerEmail: "ada@example.com", Flight: testFlight, CardNumber: "************4242"}
    f.tickets.On("GetByID", mock.Anything, key).Return(stored, nil)

    req := request()
    req.IdempotencyKey = key
    r, err := f.svc.Purchase(context.Background(), req)
    require.NoError(t, err)
    assert.True(t, r.Replayed)
    assert.Equal(t, stored, r.Ticket)

    begins, _, _ := f.rec.Counts()
    assert.Zero(t, begins)
    f.flights.AssertNotCalled(t, "SeatCounts", mock.Anything, mock.Anything)
}

func TestPurchaseIdempotencyKeyOfAnotherCustomer(t *testing.T) {
    f := newTicketFixture(t)
    key := "018f3c1e-7b7a-7cc0-9a65-4a9c2f1d3eff"
    f.tickets.On("GetByID", mock.Anything, key).Return(model.Ticket{ID: key, CustomerEmail: "bob@example.com", Flight: testFlight}, nil)

    req := request()
    req.IdempotencyKey = key
    _, err := f.svc.Purchase(context.Background(), req)
    assert.Equal(t, KindValidation, Kind(err))
    assert.Equal(t, "idempotency_key", Field(err))
}

func TestPurchaseRejectsMalformedIdempotencyKey(t *testing.T) {
    f := newTicketFixture(t)
    req := request()
    req.IdempotencyKey = "retry-1"

    _, err := f.svc.Purchase(context.Background(), req)
    assert.Equal(t, "idempotency_key", Field(err))
    f.tickets.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestPurchaseConcurrentDuplicateKeyReplays(t *testing.T) {
    f := newTicketFixture(t)
    key := "018f3c1e-7b7a-7cc0-9a65-4a9c2f1d3eff"
    stored := model.Ticket{ID: key, CustomerEmail: "ada@example.com", Flight: testFlight}

    f.tickets.On("GetByID", mock.Anything, key).Return(model.Ticket{}, repository.ErrTicketNotFound).Once()
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2}, nil)
    f.flights.On("LockByKeyTx", mock.Anything, mock.Anything, testFlight).Return(model.Flight{Key: testFlight, AirplaneID: "A"}, nil)
    f.airplanes.On("CapacityTx", mock.Anything, mock.Anything, mock.Anything, "A").Return(2, nil)
    f.tickets.On("CountForFlightTx", mock.Anything, mock.Anything, testFlight).Return(1, nil)
    f.tickets.On("InsertTx", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrConflict)
    f.tickets.On("GetByID", mock.Anything, key).Return(stored, nil).Once()

    req := request()
    req.IdempotencyKey = key
    r, err := f.svc.Purchase(context.Background(), req)
    require.NoError(t, err)
    assert.True(t, r.Replayed)

    _, commits, rollbacks := f.rec.Counts()
    assert.Zero(t, commits)
    assert.Equal(t, 1, rollbacks)
}

func TestAvailabilityIsClampedAndRepeatable(t *testing.T) {
    f := newTicketFixture(t)
    f.flights.On("SeatCounts", mock.Anything, testFlight).Return(repository.SeatCounts{Capacity: 2, Booked: 3}, nil)

    a1, err := f.svc.Availability(context.Background(), testFlight)
    require.NoError(t, err)
    a2, err := f.svc.Availability(context.Background(), testFlight)
    require.NoError(t, err)

    assert.Equal(t, 0, a1.Available)
    assert.Equal(t, a1, a2)
}
