package handlers

import (
	"github.com/google/wire"

	"github.com/janhq/chat-engine/internal/interfaces/httpserver/handlers/collectionhandler"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/handlers/sessionhandler"
)

var HandlerProvider = wire.NewSet(
	sessionhandler.NewSessionHandler,
	collectionhandler.NewCollectionHandler,
)
