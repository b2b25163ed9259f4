package middleware

import (
    "github.com/labstack/echo/v4"
)

// principalKey is the echo.Context key under which JWTAuth stores the
// authenticated Principal.
const principalKey = "principal"

// Principal is the authenticated caller.  Subject is a customer email or
// a staff username; Airline is empty for customers.
type Principal struct {
    Subject string `json:"subject"`
    Role    string `json:"role"`
    Airline string `json:"airline,omitempty"`
}

// PrincipalFrom returns the caller set by JWTAuth.
func PrincipalFrom(c echo.Context) (Principal, bool) {
    p, ok := c.Get(principalKey).(Principal)
    return p, ok && p.Subject != ""
}

// SetPrincipal attaches p to the request context.
func SetPrincipal(c echo.Context, p Principal) { c.Set(principalKey, p) }

// userID is the subject used in rate limit keys, "anon" for unauthenticated
// requests.
func userID(c echo.Context) string {
    if p, ok := PrincipalFrom(c); ok {
        return p.Subject
    }
    return "anon"
}
