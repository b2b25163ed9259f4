package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/airline-reservation/internal/config"
    "github.com/iliyamo/airline-reservation/internal/handler"
    "github.com/iliyamo/airline-reservation/internal/middleware"
)

// Deps carries everything the route tables need.  Redis may be nil, in
// which case the rate limiters and the response cache pass through.
type Deps struct {
    JWTSecret string
    Redis     *redis.Client
    Log       logrus.FieldLogger

    PurchaseLimit config.RateLimitConfig
    Cache         config.CacheConfig

    DB      handler.Pinger
    Auth    *handler.AuthHandler
    Public  *handler.PublicHandler
    Tickets *handler.TicketHandler
    Reviews *handler.ReviewHandler
    Staff   *handler.StaffHandler
}

// RegisterRoutes mounts every route group on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health(d.DB))

    RegisterAuth(e, d.Auth, d.JWTSecret)
    RegisterPublic(e, d.Public, middleware.NewRedisCache(d.Cache, d.Redis, d.Log))
    RegisterCustomer(e, d.Tickets, d.Reviews, d.JWTSecret,
        middleware.NewTokenBucket(d.PurchaseLimit, d.Redis, d.Log))
    RegisterStaff(e, d.Staff, d.JWTSecret)
}

// RegisterAuth registers the session endpoints.  Everything under
// /v1/auth works without an access token; /v1/me requires one of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register/customer", a.RegisterCustomer)
    g.POST("/register/staff", a.RegisterStaff)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)              // rotates the refresh token
    g.POST("/refresh-access", a.RefreshAccess) // access token only
    g.POST("/logout", a.Logout)

    e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the guest browse endpoints.  Only airports and
// ratings go through the response cache; search and availability read
// live seat counts.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
    e.GET("/v1/airports", p.ListAirports, cache)
    e.GET("/v1/flights/search", p.SearchFlights)
    e.GET("/v1/flights/:airline/:number/:departure/availability", p.Availability)
    e.GET("/v1/flights/:airline/:number/:departure/ratings", p.FlightRatings, cache)
}
