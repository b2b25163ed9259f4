package service

import (
    "context"
    "database/sql"
    "time"

    "github.com/stretchr/testify/mock"

    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/queue"
    "github.com/iliyamo/airline-reservation/internal/repository"
)

type mockFlights struct{ mock.Mock }

func (m *mockFlights) LockByKeyTx(ctx context.Context, tx *sql.Tx, key model.FlightKey) (model.Flight, error) {
    args := m.Called(ctx, tx, key)
    return args.Get(0).(model.Flight), args.Error(1)
}

func (m *mockFlights) SeatCounts(ctx context.Context, key model.FlightKey) (repository.SeatCounts, error) {
    args := m.Called(ctx, key)
    return args.Get(0).(repository.SeatCounts), args.Error(1)
}

func (m *mockFlights) GetByKey(ctx context.Context, key model.FlightKey) (model.Flight, error) {
    args := m.Called(ctx, key)
    return args.Get(0).(model.Flight), args.Error(1)
}

func (m *mockFlights) Create(ctx context.Context, f model.Flight) error {
    return m.Called(ctx, f).Error(0)
}

func (m *mockFlights) UpdateStatus(ctx context.Context, key model.FlightKey, status model.FlightStatus) error {
    return m.Called(ctx, key, status).Error(0)
}

type mockAirplanes struct{ mock.Mock }

func (m *mockAirplanes) CapacityTx(ctx context.Context, tx *sql.Tx, airline, id string) (int, error) {
    args := m.Called(ctx, tx, airline, id)
    return args.Int(0), args.Error(1)
}

func (m *mockAirplanes) Get(ctx context.Context, airline, id string) (model.Airplane, error) {
    args := m.Called(ctx, airline, id)
    return args.Get(0).(model.Airplane), args.Error(1)
}

type mockAirports struct{ mock.Mock }

func (m *mockAirports) Get(ctx context.Context, code string) (model.Airport, error) {
    args := m.Called(ctx, code)
    return args.Get(0).(model.Airport), args.Error(1)
}

type mockTickets struct{ mock.Mock }

func (m *mockTickets) CountForFlightTx(ctx context.Context, tx *sql.Tx, key model.FlightKey) (int, error) {
    args := m.Called(ctx, tx, key)
    return args.Int(0), args.Error(1)
}

func (m *mockTickets) InsertTx(ctx context.Context, tx *sql.Tx, t model.Ticket) error {
    return m.Called(ctx, tx, t).Error(0)
}

func (m *mockTickets) GetByID(ctx context.Context, id string) (model.Ticket, error) {
    args := m.Called(ctx, id)
    return args.Get(0).(model.Ticket), args.Error(1)
}

func (m *mockTickets) HasTicket(ctx context.Context, email string, key model.FlightKey) (bool, error) {
    args := m.Called(ctx, email, key)
    return args.Bool(0), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishTicketPurchased(ctx context.Context, ev queue.TicketPurchasedEvent) error {
    return m.Called(ctx, ev).Error(0)
}

type mockReviews struct{ mock.Mock }

func (m *mockReviews) Create(ctx context.Context, rv model.Review) (uint64, error) {
    args := m.Called(ctx, rv)
    return args.Get(0).(uint64), args.Error(1)
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
