package collection

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/chat-engine/internal/interfaces/httpserver/handlers/collectionhandler"
)

// CollectionRoute serves the collection CRUD under /api/db/collection.
type CollectionRoute struct {
	handler *collectionhandler.CollectionHandler
}

func NewCollectionRoute(handler *collectionhandler.CollectionHandler) *CollectionRoute {
	return &CollectionRoute{handler: handler}
}

func (r *CollectionRoute) RegisterRouter(router gin.IRouter) {
	group := router.Group("/api/db/collection")
	group.POST("/create", r.handler.Create)
	group.DELETE("/delete", r.handler.Delete)
	group.GET("", r.handler.List)
}
