package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/model"
)

// RequireRole lets the request through only when the principal set by
// JWTAuth has one of roles.  Staff principals must also carry an airline.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            p, ok := PrincipalFrom(c)
            if !ok || !allowed[p.Role] {
                return deny(c, http.StatusForbidden, KindForbidden, "forbidden")
            }
            if p.Role == model.RoleStaff && p.Airline == "" {
                return deny(c, http.StatusForbidden, KindForbidden, "forbidden")
            }
            return next(c)
        }
    }
}
