package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health is the liveness endpoint probed by load balancers.  It returns
// plain "ok" with a 200 status.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
