package routes

import (
	"github.com/google/wire"

	"github.com/janhq/chat-engine/internal/interfaces/httpserver/handlers"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/routes/collection"
	v1 "github.com/janhq/chat-engine/internal/interfaces/httpserver/routes/v1"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/routes/v1/sessions"
)

var RouteProvider = wire.NewSet(
	handlers.HandlerProvider,

	v1.NewV1Route,
	sessions.NewSessionRoute,
	collection.NewCollectionRoute,
)
