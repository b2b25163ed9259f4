package service

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/airline-reservation/internal/database"
    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/queue"
    "github.com/iliyamo/airline-reservation/internal/repository"
)

// FlightStore is the part of the flight repository used by purchases.
type FlightStore interface {
    LockByKeyTx(ctx context.Context, tx *sql.Tx, key model.FlightKey) (model.Flight, error)
    SeatCounts(ctx context.Context, key model.FlightKey) (repository.SeatCounts, error)
}

// CapacityStore reads airplane capacity inside a transaction.
type CapacityStore interface {
    CapacityTx(ctx context.Context, tx *sql.Tx, airline, id string) (int, error)
}

// TicketStore is the part of the ticket repository used by purchases.
type TicketStore interface {
    CountForFlightTx(ctx context.Context, tx *sql.Tx, key model.FlightKey) (int, error)
    InsertTx(ctx context.Context, tx *sql.Tx, t model.Ticket) error
    GetByID(ctx context.Context, id string) (model.Ticket, error)
}

// TicketPublisher announces committed purchases.
type TicketPublisher interface {
    PublishTicketPurchased(ctx context.Context, ev queue.TicketPurchasedEvent) error
}

// PurchaseRequest is one attempt to buy a seat.  IdempotencyKey, when set,
// must be a UUID and becomes the ticket id, so a retried request returns
// the ticket created by the first attempt instead of buying a second seat.
type PurchaseRequest struct {
    Customer       string
    Flight         model.FlightKey
    Payment        PaymentInput
    IdempotencyKey string
}

// Receipt is the outcome of a successful purchase.  Replayed is set when
// the ticket already existed under the request's idempotency key.
type Receipt struct {
    Ticket   model.Ticket
    Replayed bool
}

// Availability is the seat picture of a flight at read time.
type Availability struct {
    Flight    model.FlightKey `json:"flight"`
    Capacity  int             `json:"capacity"`
    Booked    int             `json:"booked"`
    Available int             `json:"seats_available"`
}

// TicketService sells seats without overselling.
type TicketService struct {
    db        database.Beginner
    flights   FlightStore
    airplanes CapacityStore
    tickets   TicketStore
    publisher TicketPublisher
    log       logrus.FieldLogger

    now   func() time.Time
    newID func() (uuid.UUID, error)
}

// NewTicketService wires the purchase dependencies.  publisher may be nil.
func NewTicketService(db database.Beginner, flights FlightStore, airplanes CapacityStore, tickets TicketStore,
    publisher TicketPublisher, log logrus.FieldLogger) *TicketService {
    return &TicketService{
        db:        db,
        flights:   flights,
        airplanes: airplanes,
        tickets:   tickets,
        publisher: publisher,
        log:       log.WithField("component", "tickets"),
        now:       time.Now,
        newID:     uuid.NewV7,
    }
}

// Availability returns capacity minus sold tickets, clamped at zero.  It
// takes no locks and is not authoritative for a subsequent purchase.
func (s *TicketService) Availability(ctx context.Context, key model.FlightKey) (Availability, error) {
    if err := key.Validate(); err != nil {
        return Availability{}, invalid("flight", err.Error())
    }
    sc, err := s.flights.SeatCounts(ctx, key)
    if err != nil {
        return Availability{}, err
    }
    return Availability{Flight: key, Capacity: sc.Capacity, Booked: sc.Booked, Available: sc.Available()}, nil
}

// Purchase validates the payment, then atomically re-checks capacity and
// records the ticket.  Within the transaction the flight row is locked
// exclusively, the airplane row shared and every existing ticket row of
// the flight exclusively, so purchasers of one flight are serialised and
// the committed ticket count never exceeds the capacity.
func (s *TicketService) Purchase(ctx context.Context, req PurchaseRequest) (Receipt, error) {
    pay, err := ValidatePayment(req.Payment, s.now())
    if err != nil {
        return Receipt{}, err
    }
    if err := req.Flight.Validate(); err != nil {
        return Receipt{}, invalid("flight", err.Error())
    }
    id, keyed, err := s.ticketID(req.IdempotencyKey)
    if err != nil {
        return Receipt{}, err
    }

    if keyed {
        if r, done, err := s.replay(ctx, id, req); err != nil || done {
            return r, err
        }
    }

    // cheap early exit; the decision below is made under lock
    avail, err := s.Availability(ctx, req.Flight)
    if err != nil {
        return Receipt{}, err
    }
    if avail.Available == 0 {
        return Receipt{}, ErrSoldOut
    }

    ticket := model.Ticket{
        ID:            id.String(),
        CustomerEmail: req.Customer,
        Flight:        req.Flight,
        PurchasedAt:   s.now().UTC().Truncate(time.Second),
        CardType:      pay.CardType,
        CardNumber:    model.MaskCardNumber(pay.CardNumber),
        NameOnCard:    pay.NameOnCard,
        Expiration:    pay.Expiration,
    }

    err = database.WithTx(ctx, s.db, database.ReadCommitted, func(tx *sql.Tx) error {
        flight, err := s.flights.LockByKeyTx(ctx, tx, req.Flight)
        if err != nil {
            return err
        }
        // Shared lock only: the flight row lock above already serialises
        // buyers of this flight, and an exclusive airplane lock would make
        // flights sharing an airplane wait on each other.
        capacity, err := s.airplanes.CapacityTx(ctx, tx, flight.Key.Airline, flight.AirplaneID)
        if err != nil {
            return fmt.Errorf("capacity of airplane %q: %v", flight.AirplaneID, err)
        }
        booked, err := s.tickets.CountForFlightTx(ctx, tx, flight.Key)
        if err != nil {
            return err
        }
        if booked >= capacity {
            return ErrSoldOut
        }
        return s.tickets.InsertTx(ctx, tx, ticket)
    })
    if keyed && errors.Is(err, repository.ErrConflict) {
        // a concurrent request with the same key committed first
        if r, done, rerr := s.replay(ctx, id, req); rerr != nil || done {
            return r, rerr
        }
    }
    if err != nil {
        if Kind(err) == KindInternal {
            s.log.WithError(err).WithFields(logrus.Fields{
                "flight":   req.Flight.String(),
                "customer": req.Customer,
            }).Error("purchase transaction failed")
        }
        return Receipt{}, err
    }

    s.log.WithFields(logrus.Fields{
        "ticket_id": ticket.ID,
        "flight":    ticket.Flight.String(),
        "customer":  ticket.CustomerEmail,
    }).Info("ticket purchased")
    s.publish(ctx, ticket)
    return Receipt{Ticket: ticket}, nil
}

func (s *TicketService) ticketID(key string) (uuid.UUID, bool, error) {
    if key == "" {
        id, err := s.newID()
        if err != nil {
            return uuid.Nil, false, fmt.Errorf("generate ticket id: %w", err)
        }
        return id, false, nil
    }
    id, err := uuid.Parse(key)
    if err != nil || id == uuid.Nil {
        return uuid.Nil, false, invalid("idempotency_key", "must be a UUID")
    }
    return id, true, nil
}

// replay looks up a ticket stored under an idempotency key.  done is true
// when the request has been answered from the stored ticket.
func (s *TicketService) replay(ctx context.Context, id uuid.UUID, req PurchaseRequest) (r Receipt, done bool, err error) {
    t, err := s.tickets.GetByID(ctx, id.String())
    if errors.Is(err, repository.ErrTicketNotFound) {
        return Receipt{}, false, nil
    }
    if err != nil {
        return Receipt{}, false, err
    }
    if t.CustomerEmail != req.Customer || !t.Flight.Equal(req.Flight) {
        return Receipt{}, false, invalid("idempotency_key", "already used for a different purchase")
    }
    return Receipt{Ticket: t, Replayed: true}, true, nil
}

// publish is best effort: the ticket is already committed.
func (s *TicketService) publish(ctx context.Context, t model.Ticket) {
    if s.publisher == nil {
        return
    }
    pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
    defer cancel()
    ev := queue.TicketPurchasedEvent{
        TicketID:      t.ID,
        CustomerEmail: t.CustomerEmail,
        Airline:       t.Flight.Airline,
        FlightNumber:  t.Flight.FlightNumber,
        Departure:     t.Flight.Departure.Format(time.RFC3339),
        CardType:      t.CardType,
        CardNumber:    t.CardNumber,
        PurchasedAt:   t.PurchasedAt.Format(time.RFC3339),
    }
    if err := s.publisher.PublishTicketPurchased(pctx, ev); err != nil {
        s.log.WithError(err).WithField("ticket_id", t.ID).Warn("ticket event not published")
    }
}
