package repository

import (
    "context"
    "time"

    "github.com/jmoiron/sqlx"
)

// ReportRepo runs read-only aggregations over tickets and flights.
type ReportRepo struct {
    db *sqlx.DB
}

func NewReportRepo(db *sqlx.DB) *ReportRepo { return &ReportRepo{db: db} }

// MonthlySales is one month of an airline's ticket sales, bucketed by
// purchase date.
type MonthlySales struct {
    Month   string  `db:"month" json:"month"`
    Tickets int     `db:"tickets" json:"tickets"`
    Revenue float64 `db:"revenue" json:"revenue"`
}

// SalesTotal sums a set of months.
type SalesTotal struct {
    Tickets int     `json:"tickets"`
    Revenue float64 `json:"revenue"`
}

// SalesReport is the result of MonthlySales.
type SalesReport struct {
    Monthly []MonthlySales `json:"monthly"`
    Total   SalesTotal     `json:"total"`
}

// MonthlySales aggregates tickets purchased in [from, to) for the airline.
// Zero bounds are open.
func (r *ReportRepo) MonthlySales(ctx context.Context, airline string, from, to time.Time) (SalesReport, error) {
    q := `SELECT DATE_FORMAT(t.purchased_at, '%Y-%m') AS month,
            COUNT(*) AS tickets,
            COALESCE(SUM(f.base_price), 0) AS revenue
        FROM tickets t
        JOIN flights f ON f.airline_name = t.airline_name
            AND f.flight_number = t.flight_number
            AND f.dep_datetime = t.dep_datetime
        WHERE t.airline_name = ?`
    args := []any{airline}
    if !from.IsZero() {
        q += ` AND t.purchased_at >= ?`
        args = append(args, from.UTC())
    }
    if !to.IsZero() {
        q += ` AND t.purchased_at < ?`
        args = append(args, to.UTC())
    }
    q += ` GROUP BY month ORDER BY month`

    rep := SalesReport{Monthly: []MonthlySales{}}
    if err := r.db.SelectContext(ctx, &rep.Monthly, q, args...); err != nil {
        return SalesReport{}, err
    }
    for _, m := range rep.Monthly {
        rep.Total.Tickets += m.Tickets
        rep.Total.Revenue += m.Revenue
    }
    return rep, nil
}
