package repository

import (
	"github.com/google/wire"

	"github.com/janhq/chat-engine/internal/infrastructure/database/repository/collectionrepo"
)

var RepositoryProvider = wire.NewSet(
	collectionrepo.NewCollectionGormRepository,
)
