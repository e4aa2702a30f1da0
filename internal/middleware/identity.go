package middleware

// identity.go holds helpers shared across middleware and handlers for
// reading the authenticated identity that JWTAuth stored in the Echo
// context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id, or 0 when the request is
// unauthenticated.  JWT numeric claims decode as float64, so both that
// and string forms are accepted.
func UserID(c echo.Context) uint64 {
    switch v := c.Get("user_id").(type) {
    case float64:
        return uint64(v)
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// userKey renders the identity for rate-limit keys; "anon" when the
// route is public.
func userKey(c echo.Context) string {
    if id := UserID(c); id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
