package collectionhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/chat-engine/internal/domain/collection"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/requests"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/responses"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

type CollectionHandler struct {
	service *collection.CollectionService
}

func NewCollectionHandler(service *collection.CollectionService) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// Create handles POST /api/db/collection/create. Fields are read from a JSON body or from the query string.
func (h *CollectionHandler) Create(c *gin.Context) {
	var req requests.CreateCollectionRequest
	if err := c.ShouldBind(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", err)
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid collection", err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), collection.NewCollection(req.UserID, req.Name, req.Action))
	if err != nil {
		responses.HandleError(c, err, "failed to create collection")
		return
	}
	c.JSON(http.StatusOK, created)
}

// Delete handles DELETE /api/db/collection/delete?id=<user id>
func (h *CollectionHandler) Delete(c *gin.Context) {
	var query requests.DeleteCollectionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query", err)
		return
	}
	if err := requests.Validate(query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "id is required", err)
		return
	}

	if _, err := h.service.DeleteByUserID(c.Request.Context(), query.ID); err != nil {
		responses.HandleError(c, err, "failed to delete collection")
		return
	}
	c.JSON(http.StatusOK, "Successfully Deleted")
}

// List handles GET /api/db/collection
func (h *CollectionHandler) List(c *gin.Context) {
	byUser, err := h.service.List(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list collections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": byUser})
}
