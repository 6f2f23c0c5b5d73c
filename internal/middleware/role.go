package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/esidoc/hr-document-service/internal/model"
)

// RequireRole returns a middleware enforcing that the authenticated user
// holds one of the given roles.  The roles correspond to the values
// stored in the JWT's "role" claim; JWTAuth must have run first so the
// claim is present in the context.  An actor outside the allowed set is
// rejected with 403 Forbidden and the handler never runs, so the
// attempted action has no side effect.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("role")
            raw, ok := v.(string)
            if !ok {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            role, ok := model.ParseRole(raw)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
