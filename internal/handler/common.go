package handler

// common.go holds helpers shared by the handler files: identity
// extraction, path/query parameter parsing and the standard timeout
// wrapper around request contexts.

import (
    "context"
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/middleware"
)

// errNoUser is returned when a handler runs without an authenticated
// identity in the context, which means the route was wired without
// JWTAuth.
var errNoUser = errors.New("no authenticated user in context")

// getUserID pulls the authenticated user id stored by the JWT
// middleware.
func getUserID(c echo.Context) (uint64, error) {
    if id := middleware.UserID(c); id != 0 {
        return id, nil
    }
    return 0, errNoUser
}

// pathID parses the named path parameter as a positive integer id.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}

// reqCtx derives the standard 5 second database timeout from the
// request context.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
