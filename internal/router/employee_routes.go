package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/handler"
    "github.com/iliyamo/fleet-booking/internal/middleware"
)

// RegisterEmployee registers the booking lifecycle endpoints under /v1.
// Both roles may use them: admins book cars like everyone else, and the
// handlers check booking membership themselves.
func RegisterEmployee(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("EMPLOYEE", "ADMIN"),
    )

    g.GET("/vehicles/available", h.AvailableVehicles)

    g.POST("/bookings", h.Create)
    g.GET("/my-bookings", h.MyBookings)
    g.GET("/bookings/:id", h.Detail)

    // Lifecycle transitions; each validates the current status and
    // answers 409 when the move is not allowed.
    g.POST("/bookings/:id/start", h.StartUse)
    g.POST("/bookings/:id/return", h.Return)
    g.POST("/bookings/:id/confirm-return", h.ConfirmReturn)
    g.POST("/bookings/:id/cancel", h.Cancel)

    g.POST("/bookings/:id/refills", h.AddRefill)
    g.GET("/bookings/:id/refills", h.ListRefills)
}
