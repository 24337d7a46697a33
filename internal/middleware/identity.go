package middleware

// identity.go resolves the caller-supplied user identifier.  There is no
// authentication: the X-User-ID header is trusted as-is and handlers
// fall back to it when a request body or query omits user_id.

import (
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
)

// HeaderUserID carries the caller's user id.
const HeaderUserID = "X-User-ID"

const ctxUserID = "user_id"

// Identity stores a valid X-User-ID header value in the context.  An
// absent or malformed header is ignored.
func Identity() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
            if raw != "" {
                if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
                    c.Set(ctxUserID, id)
                }
            }
            return next(c)
        }
    }
}

// UserID returns the id stored by Identity.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id > 0
}

// userKey is the identity component of rate limit keys.
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
