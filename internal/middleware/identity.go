package middleware

// identity.go resolves who is calling.  Staff are identified by the JWT
// subject placed in the context by JWTAuth; anonymous visitors by the chat
// session they present in X-Session-ID.  Both feed the rate limiter key.

import (
    "strconv"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
)

// SessionHeader carries the visitor's chat session id.
const SessionHeader = "X-Session-ID"

// Context keys written by JWTAuth.
const (
    ctxStaffID = "staff_id"
    ctxRole    = "role"
)

// StaffID returns the authenticated staff id, if any.
func StaffID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxStaffID).(uint64)
    return id, ok && id != 0
}

// Role returns the authenticated staff role, or "".
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// sessionKey is "staff:<id>" for staff, "session:<uuid>" for visitors that
// send a well-formed session header and "anon" otherwise.
func sessionKey(c echo.Context) string {
    if id, ok := StaffID(c); ok {
        return "staff:" + strconv.FormatUint(id, 10)
    }
    if s := c.Request().Header.Get(SessionHeader); s != "" {
        if u, err := uuid.Parse(s); err == nil {
            return "session:" + u.String()
        }
    }
    if s := c.Param("session"); s != "" {
        if u, err := uuid.Parse(s); err == nil {
            return "session:" + u.String()
        }
    }
    return "anon"
}
