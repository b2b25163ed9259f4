package repository

import (
    "context"
    "strings"
    "time"
)

// FlightSearchQuery defines filters & pagination for the public flight
// search.  From and To match either an exact IATA code or a city name
// substring.  Date, when set, restricts results to that UTC day.
type FlightSearchQuery struct {
    From     string
    To       string
    Date     *time.Time
    Now      time.Time
    Page     int
    PageSize int
}

// FlightSearchRow is one search hit.  SeatsAvailable is computed from the
// committed ticket count at query time.
type FlightSearchRow struct {
    Airline          string    `db:"airline_name" json:"airline"`
    FlightNumber     string    `db:"flight_number" json:"flight_number"`
    Departure        time.Time `db:"dep_datetime" json:"departure"`
    Arrival          time.Time `db:"arr_datetime" json:"arrival"`
    DepartureAirport string    `db:"dep_airport_code" json:"departure_airport"`
    DepartureCity    string    `db:"dep_city" json:"departure_city"`
    ArrivalAirport   string    `db:"arr_airport_code" json:"arrival_airport"`
    ArrivalCity      string    `db:"arr_city" json:"arrival_city"`
    BasePrice        float64   `db:"base_price" json:"base_price"`
    Status           string    `db:"status" json:"status"`
    Capacity         int       `db:"capacity" json:"capacity"`
    SeatsAvailable   int       `db:"seats_available" json:"seats_available"`
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// placeFilter matches a code exactly or a city by case-insensitive
// substring.  Wildcards in v match literally.
func placeFilter(codeCol, cityCol, v string) (string, []any) {
    v = strings.TrimSpace(v)
    pattern := "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
    like := "LOWER(" + cityCol + ") LIKE ? ESCAPE '!'"
    if len(v) == 3 {
        return "(" + codeCol + " = ? OR " + like + ")", []any{strings.ToUpper(v), pattern}
    }
    return like, []any{pattern}
}

// Search returns one page of upcoming flights and the total match count.
func (r *FlightRepo) Search(ctx context.Context, q FlightSearchQuery) ([]FlightSearchRow, int64, error) {
    now := q.Now
    if now.IsZero() {
        now = time.Now()
    }
    where := []string{"f.dep_datetime >= ?"}
    args := []any{now.UTC()}

    if q.From != "" {
        cond, a := placeFilter("f.dep_airport_code", "dep.city", q.From)
        where = append(where, cond)
        args = append(args, a...)
    }
    if q.To != "" {
        cond, a := placeFilter("f.arr_airport_code", "arr.city", q.To)
        where = append(where, cond)
        args = append(args, a...)
    }
    if q.Date != nil {
        day := q.Date.UTC().Truncate(24 * time.Hour)
        where = append(where, "f.dep_datetime >= ? AND f.dep_datetime < ?")
        args = append(args, day, day.Add(24*time.Hour))
    }
    cond := strings.Join(where, " AND ")

    const from = `
        FROM flights f
        JOIN airports dep  ON dep.code = f.dep_airport_code
        JOIN airports arr  ON arr.code = f.arr_airport_code
        JOIN airplanes a   ON a.airline_name = f.airline_name AND a.id = f.airplane_id
        WHERE `

    var total int64
    if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+from+cond, args...); err != nil {
        return nil, 0, err
    }

    dataSQL := `SELECT
            f.airline_name, f.flight_number, f.dep_datetime, f.arr_datetime,
            f.dep_airport_code, dep.city AS dep_city,
            f.arr_airport_code, arr.city AS arr_city,
            f.base_price, f.status,
            a.num_seats AS capacity,
            GREATEST(CAST(a.num_seats AS SIGNED) - (
                SELECT COUNT(*) FROM tickets t
                 WHERE t.airline_name = f.airline_name
                   AND t.flight_number = f.flight_number
                   AND t.dep_datetime = f.dep_datetime), 0) AS seats_available` +
        from + cond + `
        ORDER BY f.dep_datetime ASC, f.airline_name, f.flight_number
        LIMIT ? OFFSET ?`
    page := max(q.Page, 1)
    dataArgs := append(append([]any{}, args...), q.PageSize, (page-1)*q.PageSize)

    out := make([]FlightSearchRow, 0, q.PageSize)
    if err := r.db.SelectContext(ctx, &out, dataSQL, dataArgs...); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}
