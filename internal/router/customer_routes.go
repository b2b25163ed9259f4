package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/handler"
    "github.com/iliyamo/airline-reservation/internal/middleware"
    "github.com/iliyamo/airline-reservation/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All routes
// require a valid JWT and the CUSTOMER role.  Purchases additionally pass
// through their own token bucket, keyed per customer.
func RegisterCustomer(e *echo.Echo, t *handler.TicketHandler, r *handler.ReviewHandler, jwtSecret string,
    purchaseLimit echo.MiddlewareFunc) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleCustomer),
    )
    g.POST("/flights/:airline/:number/:departure/tickets", t.Purchase, purchaseLimit)
    g.GET("/my/tickets", t.MyTickets)
    g.GET("/my/tickets/:id", t.MyTicket)

    g.POST("/flights/:airline/:number/:departure/reviews", r.Create)
    g.GET("/my/reviews", r.Mine)
}
