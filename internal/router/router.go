package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/esidoc/hr-document-service/internal/handler"    // HTTP handlers implementing the endpoints
	"github.com/esidoc/hr-document-service/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only the health
// check, which load balancers and monitoring probes call to verify that
// the service and its database are reachable.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, the authenticated session endpoint under /v1.  The optional
// limiter middleware is applied to the credential-accepting endpoints
// (login and password reset) to slow down guessing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.POST("/login", a.Login, limiter)
		g.POST("/password-reset", a.PasswordResetRequest, limiter)
		g.POST("/password-reset/confirm", a.PasswordResetConfirm, limiter)
	} else {
		g.POST("/login", a.Login)
		g.POST("/password-reset", a.PasswordResetRequest)
		g.POST("/password-reset/confirm", a.PasswordResetConfirm)
	}
	g.POST("/refresh", a.Refresh)
	// Logout accepts either an access token in the Authorization header
	// (revokes every session) or a refresh_token body (revokes one), so it
	// is registered without the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
