package service

import (
    "context"
    "strings"
    "time"
    "unicode/utf8"

    "github.com/iliyamo/airline-reservation/internal/model"
)

type FlightReader interface {
    GetByKey(ctx context.Context, key model.FlightKey) (model.Flight, error)
}

type TicketHolder interface {
    HasTicket(ctx context.Context, email string, key model.FlightKey) (bool, error)
}

type ReviewStore interface {
    Create(ctx context.Context, rv model.Review) (uint64, error)
}

// ReviewInput is a rating submitted by a customer.
type ReviewInput struct {
    Rating  int    `json:"rating"`
    Comment string `json:"comment"`
}

const maxCommentLen = 1000

// ReviewService lets customers rate flights they have taken.
type ReviewService struct {
    flights FlightReader
    tickets TicketHolder
    reviews ReviewStore
    now     func() time.Time
}

func NewReviewService(flights FlightReader, tickets TicketHolder, reviews ReviewStore) *ReviewService {
    return &ReviewService{flights: flights, tickets: tickets, reviews: reviews, now: time.Now}
}

// Submit records a review of key by customer.  The flight must have
// departed and the customer must hold a ticket for it.
func (s *ReviewService) Submit(ctx context.Context, customer string, key model.FlightKey, in ReviewInput) (model.Review, error) {
    if in.Rating < 1 || in.Rating > 5 {
        return model.Review{}, invalid("rating", "must be between 1 and 5")
    }
    comment := strings.TrimSpace(in.Comment)
    if utf8.RuneCountInString(comment) > maxCommentLen {
        return model.Review{}, invalid("comment", "must be at most 1000 characters")
    }
    if err := key.Validate(); err != nil {
        return model.Review{}, invalid("flight", err.Error())
    }

    f, err := s.flights.GetByKey(ctx, key)
    if err != nil {
        return model.Review{}, err
    }
    now := s.now().UTC()
    if f.Key.Departure.After(now) {
        return model.Review{}, invalid("flight", "flight has not departed yet")
    }
    held, err := s.tickets.HasTicket(ctx, customer, key)
    if err != nil {
        return model.Review{}, err
    }
    if !held {
        return model.Review{}, invalid("flight", "you have no ticket for this flight")
    }

    rv := model.Review{
        CustomerEmail: customer,
        Flight:        f.Key,
        Rating:        in.Rating,
        Comment:       comment,
        CreatedAt:     now.Truncate(time.Second),
    }
    id, err := s.reviews.Create(ctx, rv)
    if err != nil {
        return model.Review{}, err
    }
    rv.ID = id
    return rv, nil
}
