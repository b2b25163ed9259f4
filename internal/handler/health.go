package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/middleware"
)

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health answers "ok" while the database is reachable.  A nil db skips
// the check.
func Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
            defer cancel()
            if err := db.PingContext(ctx); err != nil {
                c.Set(middleware.ErrorKey, err)
                return c.String(http.StatusServiceUnavailable, "database unavailable")
            }
        }
        return c.String(http.StatusOK, "ok")
    }
}
