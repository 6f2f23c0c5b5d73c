package router

import (
	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/handler"
	"github.com/esidoc/hr-document-service/internal/middleware"
	"github.com/esidoc/hr-document-service/internal/model"
)

// RegisterAdmin registers account administration and HR registry routes.
// Account and employee writes are restricted to ADMIN; the audit trail
// and the dashboard are readable by ADMIN and RH.
func RegisterAdmin(e *echo.Echo, jwtSecret string,
	users *handler.UserHandler, employees *handler.EmployeeHandler,
	activities *handler.ActivityHandler, stats *handler.StatsHandler,
	auth *handler.AuthHandler) {

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	// User listing and retrieval are open to every role; the handlers
	// scope non-admins down to their own record.
	v1.GET("/users", users.List)
	v1.GET("/users/:id", users.Get)
	// Changing a password is self-service or admin; the handler decides.
	v1.POST("/users/:id/change-password", auth.ChangePassword)

	admin := v1.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/users", users.Create)
	admin.PUT("/users/:id", users.Update)
	admin.DELETE("/users/:id", users.Deactivate)

	// Employee reads serve every authenticated role: RH issues documents
	// against the registry and SG consults it.
	v1.GET("/employees", employees.List)
	v1.GET("/employees/active", employees.ListActive)
	v1.GET("/employees/by-category", employees.ListByCategory)
	v1.GET("/employees/:id", employees.Get)
	admin.POST("/employees", employees.Create)
	admin.PUT("/employees/:id", employees.Update)
	admin.DELETE("/employees/:id", employees.Delete)

	// The audit trail and dashboard stay hidden from SG.
	audited := v1.Group("", middleware.RequireRole(model.RoleAdmin, model.RoleRH))
	audited.GET("/activities", activities.List)
	audited.GET("/activities/recent", activities.Recent)
	audited.GET("/dashboard/stats", stats.Summary)
}
