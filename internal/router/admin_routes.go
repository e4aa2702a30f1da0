package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/handler"
    "github.com/iliyamo/fleet-booking/internal/middleware"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.
// Every route requires a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, vh *handler.AdminVehicleHandler, eh *handler.AdminEmployeeHandler, bh *handler.AdminBookingHandler, rh *handler.ReportHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )

    // Fleet roster.  DELETE retires the vehicle instead of removing it.
    g.POST("/vehicles", vh.Create)
    g.GET("/vehicles", vh.List)
    g.GET("/vehicles/:id", vh.Detail)
    g.PUT("/vehicles/:id", vh.Update)
    g.DELETE("/vehicles/:id", vh.Retire)

    // Employee roster.  DELETE deactivates the profile and account.
    g.POST("/employees", eh.Create)
    g.GET("/employees", eh.List)
    g.GET("/employees/:id", eh.Detail)
    g.PUT("/employees/:id", eh.Update)
    g.DELETE("/employees/:id", eh.Deactivate)

    // Booking back-office: filtered list, detail and corrections.
    g.GET("/bookings", bh.List)
    g.GET("/bookings/:id", bh.Detail)
    g.PUT("/bookings/:id", bh.Update)
    g.PUT("/refills/:id", bh.UpdateRefill)

    // Monthly reports.
    g.GET("/reports/audit", rh.Audit)
    g.GET("/reports/fuel-xlsx", rh.FuelExport)
}
