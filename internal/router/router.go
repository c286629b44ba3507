// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bernardev/good-trip-api/internal/handler"
	"github.com/bernardev/good-trip-api/internal/middleware"
)

// RegisterRoutes registers the public booking API and the health check on
// the provided Echo instance.
func RegisterRoutes(e *echo.Echo, tickets *handler.TicketHandler, payments *handler.PaymentHandler, pdfs *handler.PDFHandler) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.POST("/payments", payments.Create)
	v1.POST("/tickets/issue", tickets.Issue)
	v1.POST("/tickets/pdf", pdfs.Render)
	v1.GET("/tickets/:orderId", tickets.Get)
}

// RegisterAdmin registers the operations surface. Login is open; the
// refund approval listing requires a valid admin bearer token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	e.POST("/v1/admin/login", a.Login)

	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("/refunds/pending", a.PendingRefunds)
}
