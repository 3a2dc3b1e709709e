package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/routes/v1/sessions"
)

type V1Route struct {
	sessionRoute *sessions.SessionRoute
}

func NewV1Route(sessionRoute *sessions.SessionRoute) *V1Route {
	return &V1Route{sessionRoute: sessionRoute}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": config.Version})
	})
	v1Route.sessionRoute.RegisterRouter(v1Router)
}
