package middleware // reusable HTTP middleware for the Echo server

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/utils"
)

// JWTAuth validates the Bearer access token and stores the caller as a
// Principal (see PrincipalFrom).  Requests without a valid token are
// answered with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := BearerToken(c)
            if !ok {
                return deny(c, http.StatusUnauthorized, KindUnauthorized, "missing bearer token")
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return deny(c, http.StatusUnauthorized, KindUnauthorized, "invalid token")
            }
            SetPrincipal(c, Principal{Subject: claims.Subject, Role: claims.Role, Airline: claims.Airline})
            return next(c)
        }
    }
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if !strings.HasPrefix(auth, "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    return raw, raw != ""
}

// Error kinds of the bodies written by this package.
const (
    KindUnauthorized = "unauthorized"
    KindForbidden    = "forbidden"
    KindRateLimited  = "rate_limited"
)

// deny writes the same {"error", "error_kind"} body the handlers use.
func deny(c echo.Context, status int, kind, msg string) error {
    return c.JSON(status, echo.Map{"error": msg, "error_kind": kind})
}
