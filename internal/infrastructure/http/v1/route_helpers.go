package v1

import (
	"github.com/gin-gonic/gin"

	"docflow/internal/domain/auth"
	"docflow/internal/infrastructure/http/v1/middleware"
)

// DocumentRouteHandler defines the interface for document handlers.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Transition(c *gin.Context)
	History(c *gin.Context)
}

// RegisterDocumentRoutes registers CRUD, transition and history routes for
// a document kind. compress wraps the list response.
//
// Usage:
//
//	handler := handlers.NewPurchaseOrderHandler(base, service, machine)
//	RegisterDocumentRoutes(api.Group("/purchase-orders"), handler, compress)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, compress gin.HandlerFunc) {
	read := middleware.RequirePermission(auth.PermDocumentRead)
	write := middleware.RequirePermission(auth.PermDocumentWrite)

	group.GET("", read, compress, handler.List)
	group.POST("", write, handler.Create)
	group.GET("/:id", read, handler.Get)
	group.PUT("/:id", write, handler.Update)
	group.DELETE("/:id", write, handler.Delete)
	group.POST("/:id/transition", middleware.RequirePermission(auth.PermDocumentTransit), handler.Transition)
	group.GET("/:id/history", read, handler.History)
}
