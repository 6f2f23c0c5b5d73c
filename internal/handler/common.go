package handler // handler defines the HTTP handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/audit"
	"github.com/esidoc/hr-document-service/internal/model"
)

// getUserID extracts the authenticated user's ID from the echo context.
// JWT numeric claims arrive as float64; older middleware may store other
// numeric types, so a type switch keeps the lookup tolerant.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the authenticated user's role or false when absent.
func getRole(c echo.Context) (model.Role, bool) {
	raw, ok := c.Get("role").(string)
	if !ok {
		return "", false
	}
	return model.ParseRole(raw)
}

// getName returns the display name claim, empty when absent.
func getName(c echo.Context) string {
	if s, ok := c.Get("name").(string); ok {
		return s
	}
	return ""
}

// parseIDParam converts the :id path parameter to uint64.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// newEvent builds an audit event pre-filled with the acting user and the
// request metadata (client IP and user agent).  Handlers fill in action,
// target and description and hand it to the recorder after a successful
// mutation.
func newEvent(c echo.Context, action model.ActionKind, target model.TargetKind, targetID uint64, description string) audit.Event {
	e := audit.Event{
		Action:      action,
		Target:      target,
		Description: description,
		IP:          c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
	}
	if uid, err := getUserID(c); err == nil {
		e.ActorID = &uid
	}
	if targetID != 0 {
		e.TargetID = &targetID
	}
	return e
}
