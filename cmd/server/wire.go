//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/janhq/chat-engine/internal/domain"
	"github.com/janhq/chat-engine/internal/infrastructure"
	"github.com/janhq/chat-engine/internal/interfaces"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
