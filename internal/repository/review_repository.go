package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/airline-reservation/internal/model"
)

// ReviewRepo stores customer ratings.  No uniqueness is enforced per
// (customer, flight).
type ReviewRepo struct {
    db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and returns its id.
func (r *ReviewRepo) Create(ctx context.Context, rv model.Review) (uint64, error) {
    var comment sql.NullString
    if rv.Comment != "" {
        comment = sql.NullString{String: rv.Comment, Valid: true}
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO reviews (customer_email, airline_name, flight_number, dep_datetime, rating, comment, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
        rv.CustomerEmail, rv.Flight.Airline, rv.Flight.FlightNumber, rv.Flight.Departure.UTC(),
        rv.Rating, comment, rv.CreatedAt.UTC())
    if isMissingReference(err) {
        return 0, ErrFlightNotFound
    }
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ReviewRow is the listing shape of a review.
type ReviewRow struct {
    ID            uint64    `db:"id" json:"id"`
    CustomerEmail string    `db:"customer_email" json:"customer_email"`
    Airline       string    `db:"airline_name" json:"airline"`
    FlightNumber  string    `db:"flight_number" json:"flight_number"`
    Departure     time.Time `db:"dep_datetime" json:"departure"`
    Rating        int       `db:"rating" json:"rating"`
    Comment       string    `db:"comment" json:"comment"`
    CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

const reviewSelect = `SELECT id, customer_email, airline_name, flight_number, dep_datetime,
        rating, COALESCE(comment, '') AS comment, created_at
    FROM reviews`

// ListByCustomer returns the customer's reviews, newest first.
func (r *ReviewRepo) ListByCustomer(ctx context.Context, email string) ([]ReviewRow, error) {
    out := []ReviewRow{}
    err := r.db.SelectContext(ctx, &out,
        reviewSelect+` WHERE customer_email = ? ORDER BY created_at DESC, id DESC`, email)
    return out, err
}

// FlightRatings aggregates the reviews of one flight.
type FlightRatings struct {
    Average float64     `json:"average_rating"`
    Total   int         `json:"total_ratings"`
    Ratings []ReviewRow `json:"ratings"`
}

// ForFlight returns the flight's reviews with their average.
func (r *ReviewRepo) ForFlight(ctx context.Context, key model.FlightKey) (FlightRatings, error) {
    out := FlightRatings{Ratings: []ReviewRow{}}
    err := r.db.SelectContext(ctx, &out.Ratings,
        reviewSelect+` WHERE `+flightKeyWhere+` ORDER BY created_at DESC, id DESC`, keyArgs(key)...)
    if err != nil {
        return FlightRatings{}, err
    }
    out.Total = len(out.Ratings)
    if out.Total > 0 {
        sum := 0
        for _, rv := range out.Ratings {
            sum += rv.Rating
        }
        out.Average = float64(sum) / float64(out.Total)
    }
    return out, nil
}
