// Package router wires handlers and middleware to HTTP routes.  Routes
// fall into three tiers: public (health, auth), employee (any
// authenticated role) and admin (ADMIN only).
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/fleet-booking/internal/config"
    "github.com/iliyamo/fleet-booking/internal/handler"
    "github.com/iliyamo/fleet-booking/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
    // Probed by load balancers; returns plain "ok".
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints.  Login, refresh and
// logout are open; /v1/me requires a valid token of either role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("EMPLOYEE", "ADMIN"))
    auth.GET("/me", a.Me)
}

// RegisterShared attaches the rate limiter and response cache to the
// Echo instance.  Both are no-ops when disabled or when Redis is down,
// so the API keeps serving without them.
func RegisterShared(e *echo.Echo, rdb *redis.Client) {
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
}
