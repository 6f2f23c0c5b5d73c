package router

import (
	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/handler"
	"github.com/esidoc/hr-document-service/internal/middleware"
)

// RegisterDocuments registers work certificate, mission order and
// notification routes.  All of them require a valid session; finer role
// distinctions are not applied here because every staff role may issue
// and consult documents.
func RegisterDocuments(e *echo.Echo, jwtSecret string,
	certs *handler.CertificateHandler, missions *handler.MissionHandler,
	notifications *handler.NotificationHandler) {

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	v1.POST("/attestations", certs.Create)
	v1.GET("/attestations", certs.List)
	v1.GET("/attestations/by-employee", certs.ListByEmployee)
	v1.GET("/attestations/:id", certs.Get)
	v1.PUT("/attestations/:id", certs.Update)
	v1.DELETE("/attestations/:id", certs.Delete)

	v1.POST("/missions", missions.Create)
	v1.GET("/missions", missions.List)
	v1.GET("/missions/by-employee", missions.ListByEmployee)
	v1.GET("/missions/:id", missions.Get)
	v1.PUT("/missions/:id", missions.Update)
	v1.DELETE("/missions/:id", missions.Delete)
	v1.GET("/missions/:id/etapes", missions.ListLegs)
	v1.POST("/missions/:id/etapes", missions.AddLeg)
	v1.GET("/missions/:id/etapes/:legId", missions.GetLeg)
	v1.PUT("/missions/:id/etapes/:legId", missions.UpdateLeg)
	v1.DELETE("/missions/:id/etapes/:legId", missions.DeleteLeg)

	v1.POST("/notifications", notifications.Create)
	v1.GET("/notifications", notifications.List)
	v1.GET("/notifications/:id", notifications.Get)
	v1.DELETE("/notifications/:id", notifications.Delete)
	v1.POST("/notifications/:id/read", notifications.MarkRead)
	v1.POST("/notifications/read-all", notifications.MarkAllRead)
}
