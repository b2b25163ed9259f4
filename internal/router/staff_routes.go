package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/handler"
    "github.com/iliyamo/airline-reservation/internal/middleware"
    "github.com/iliyamo/airline-reservation/internal/model"
)

// RegisterStaff registers STAFF-scoped endpoints under /v1/staff.
// The handler scopes every query to the airline in the caller's token.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
    g := e.Group(
        "/v1/staff",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleStaff),
    )

    // ---- Flights ----
    g.GET("/flights", s.ListFlights)
    g.POST("/flights", s.CreateFlight)
    g.PATCH("/flights/:airline/:number/:departure/status", s.ChangeStatus)
    g.GET("/flights/:airline/:number/:departure/passengers", s.Passengers)

    // ---- Fleet ----
    g.GET("/airplanes", s.ListAirplanes)
    g.POST("/airplanes", s.CreateAirplane)
    g.POST("/airports", s.CreateAirport)

    // ---- Reports ----
    g.GET("/reports/sales", s.SalesReport)
}
