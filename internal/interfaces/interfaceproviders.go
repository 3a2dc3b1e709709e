package interfaces

import (
	"github.com/google/wire"

	"github.com/janhq/chat-engine/internal/interfaces/httpserver"
)

var InterfacesProvider = wire.NewSet(
	httpserver.NewHttpServer,
)
