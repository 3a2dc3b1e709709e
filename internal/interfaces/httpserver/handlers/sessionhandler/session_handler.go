package sessionhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/domain/session"
	"github.com/janhq/chat-engine/internal/infrastructure/metrics"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/requests"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/responses"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

const sessionIDParam = "session_id"

// SessionHandler exposes the session registry over HTTP.
type SessionHandler struct {
	sessions *session.Service
	presets  *config.ObserverPresets
}

func NewSessionHandler(sessions *session.Service, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		presets:  cfg.ObserverPresets,
	}
}

// CreateSession handles POST /v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req requests.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", err)
			return
		}
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid session parameters", err)
		return
	}

	snapshot, err := h.sessions.Create(c.Request.Context(), session.CreateParams{
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create session")
		return
	}
	metrics.SetActiveSessions(h.sessions.Count())

	c.JSON(http.StatusCreated, snapshot)
}

// ListSessions handles GET /v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.sessions.List(c.Request.Context())})
}

// GetSession handles GET /v1/sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	snapshot, err := h.sessions.Get(c.Request.Context(), c.Param(sessionIDParam))
	if err != nil {
		responses.HandleError(c, err, "failed to get session")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// DeleteSession handles DELETE /v1/sessions/:session_id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id := c.Param(sessionIDParam)
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete session")
		return
	}
	metrics.SetActiveSessions(h.sessions.Count())
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// ResetSession handles POST /v1/sessions/:session_id/reset
func (h *SessionHandler) ResetSession(c *gin.Context) {
	snapshot, err := h.sessions.Reset(c.Request.Context(), c.Param(sessionIDParam))
	if err != nil {
		responses.HandleError(c, err, "failed to reset session")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SendMessage handles POST /v1/sessions/:session_id/messages
func (h *SessionHandler) SendMessage(c *gin.Context) {
	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", err)
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid message parameters", err)
		return
	}

	reply, err := h.sessions.Send(c.Request.Context(), c.Param(sessionIDParam), req.Input, req.Options()...)
	if err != nil {
		responses.HandleError(c, err, "failed to send message")
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Observe handles POST /v1/sessions/:session_id/observe
func (h *SessionHandler) Observe(c *gin.Context) {
	var req requests.ObserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", err)
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "instruction or preset is required", err)
		return
	}

	instruction := req.Instruction
	var opts []conversation.ObserveOption
	if req.Preset != "" {
		preset, ok := h.presets.Get(req.Preset)
		if !ok {
			responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, "observer preset not found", nil)
			return
		}
		if instruction == "" {
			instruction = preset.Instruction
		}
		if preset.TargetRole != "" {
			opts = append(opts, conversation.WithTargetRole(conversation.Role(preset.TargetRole)))
		}
		opts = append(opts, conversation.FromMostRecent(preset.FromMostRecent))
	}
	// Explicit request fields win over the preset.
	if req.TargetRole != nil {
		opts = append(opts, conversation.WithTargetRole(conversation.Role(*req.TargetRole)))
	}
	if req.FromMostRecent != nil {
		opts = append(opts, conversation.FromMostRecent(*req.FromMostRecent))
	}

	observation, err := h.sessions.Observe(c.Request.Context(), c.Param(sessionIDParam), req.Input, instruction, opts...)
	if err != nil {
		responses.HandleError(c, err, "failed to observe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"observation": observation})
}

// ListObservers handles GET /v1/observers
func (h *SessionHandler) ListObservers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.presets.Names()})
}

// GetUsage handles GET /v1/usage
func (h *SessionHandler) GetUsage(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Usage(c.Request.Context()))
}
