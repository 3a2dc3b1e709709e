package sessions

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/chat-engine/internal/interfaces/httpserver/handlers/sessionhandler"
)

// SessionRoute handles session, observer and usage routes
type SessionRoute struct {
	handler *sessionhandler.SessionHandler
}

func NewSessionRoute(handler *sessionhandler.SessionHandler) *SessionRoute {
	return &SessionRoute{handler: handler}
}

func (r *SessionRoute) RegisterRouter(router gin.IRouter) {
	sessionGroup := router.Group("/sessions")
	{
		sessionGroup.POST("", r.handler.CreateSession)
		sessionGroup.GET("", r.handler.ListSessions)
		sessionGroup.GET("/:session_id", r.handler.GetSession)
		sessionGroup.DELETE("/:session_id", r.handler.DeleteSession)
		sessionGroup.POST("/:session_id/reset", r.handler.ResetSession)
		sessionGroup.POST("/:session_id/messages", r.handler.SendMessage)
		sessionGroup.POST("/:session_id/observe", r.handler.Observe)
	}

	router.GET("/observers", r.handler.ListObservers)
	router.GET("/usage", r.handler.GetUsage)
}
