package handler

import (
    "context"
    "time"

    "github.com/stretchr/testify/mock"

    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/repository"
    "github.com/iliyamo/airline-reservation/internal/service"
)

type mockPurchaser struct{ mock.Mock }

func (m *mockPurchaser) Purchase(ctx context.Context, req service.PurchaseRequest) (service.Receipt, error) {
    args := m.Called(ctx, req)
    return args.Get(0).(service.Receipt), args.Error(1)
}

type mockCustomerTickets struct{ mock.Mock }

func (m *mockCustomerTickets) ListByCustomer(ctx context.Context, q repository.CustomerTicketQuery) ([]repository.CustomerTicketRow, error) {
    args := m.Called(ctx, q)
    return args.Get(0).([]repository.CustomerTicketRow), args.Error(1)
}

func (m *mockCustomerTickets) GetForCustomer(ctx context.Context, id, email string) (repository.CustomerTicketRow, error) {
    args := m.Called(ctx, id, email)
    return args.Get(0).(repository.CustomerTicketRow), args.Error(1)
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(ctx context.Context, q repository.FlightSearchQuery) ([]repository.FlightSearchRow, int64, error) {
    args := m.Called(ctx, q)
    return args.Get(0).([]repository.FlightSearchRow), args.Get(1).(int64), args.Error(2)
}

func (m *mockSearcher) GetByKey(ctx context.Context, key model.FlightKey) (model.Flight, error) {
    args := m.Called(ctx, key)
    return args.Get(0).(model.Flight), args.Error(1)
}

type mockSeats struct{ mock.Mock }

func (m *mockSeats) Availability(ctx context.Context, key model.FlightKey) (service.Availability, error) {
    args := m.Called(ctx, key)
    return args.Get(0).(service.Availability), args.Error(1)
}

type mockRatings struct{ mock.Mock }

func (m *mockRatings) ForFlight(ctx context.Context, key model.FlightKey) (repository.FlightRatings, error) {
    args := m.Called(ctx, key)
    return args.Get(0).(repository.FlightRatings), args.Error(1)
}

type mockScheduler struct{ mock.Mock }

func (m *mockScheduler) Create(ctx context.Context, airline string, in service.FlightInput) (model.Flight, error) {
    args := m.Called(ctx, airline, in)
    return args.Get(0).(model.Flight), args.Error(1)
}

func (m *mockScheduler) ChangeStatus(ctx context.Context, airline string, key model.FlightKey, status string) error {
    return m.Called(ctx, airline, key, status).Error(0)
}

type mockPassengers struct{ mock.Mock }

func (m *mockPassengers) ListPassengers(ctx context.Context, key model.FlightKey) ([]repository.PassengerRow, error) {
    args := m.Called(ctx, key)
    return args.Get(0).([]repository.PassengerRow), args.Error(1)
}

type mockFleet struct{ mock.Mock }

func (m *mockFleet) ListByAirline(ctx context.Context, airline string) ([]model.Airplane, error) {
    args := m.Called(ctx, airline)
    return args.Get(0).([]model.Airplane), args.Error(1)
}

func (m *mockFleet) Create(ctx context.Context, a model.Airplane) error {
    return m.Called(ctx, a).Error(0)
}

type mockAirports struct{ mock.Mock }

func (m *mockAirports) Create(ctx context.Context, a model.Airport) error {
    return m.Called(ctx, a).Error(0)
}

type mockReports struct{ mock.Mock }

func (m *mockReports) MonthlySales(ctx context.Context, airline string, from, to time.Time) (repository.SalesReport, error) {
    args := m.Called(ctx, airline, from, to)
    return args.Get(0).(repository.SalesReport), args.Error(1)
}

type mockCustomers struct{ mock.Mock }

func (m *mockCustomers) Create(ctx context.Context, c model.Customer) error {
    return m.Called(ctx, c).Error(0)
}

func (m *mockCustomers) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
    args := m.Called(ctx, email)
    return args.Get(0).(model.Customer), args.Error(1)
}

type mockStaff struct{ mock.Mock }

func (m *mockStaff) Create(ctx context.Context, s model.Staff) error {
    return m.Called(ctx, s).Error(0)
}

func (m *mockStaff) GetByUsername(ctx context.Context, username string) (model.Staff, error) {
    args := m.Called(ctx, username)
    return args.Get(0).(model.Staff), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, role, subject, tokenHash string, exp time.Time) error {
    return m.Called(ctx, role, subject, tokenHash, exp).Error(0)
}

func (m *mockTokens) ValidateRefresh(ctx context.Context, tokenHash string) (string, string, error) {
    args := m.Called(ctx, tokenHash)
    return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, tokenHash string) error {
    return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockTokens) RevokeAll(ctx context.Context, role, subject string) error {
    return m.Called(ctx, role, subject).Error(0)
}
