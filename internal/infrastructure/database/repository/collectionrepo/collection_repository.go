package collectionrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/janhq/chat-engine/internal/domain/collection"
	"github.com/janhq/chat-engine/internal/infrastructure/database/dbschema"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

type CollectionGormRepository struct {
	db *gorm.DB
}

var _ collection.CollectionRepository = (*CollectionGormRepository)(nil)

func NewCollectionGormRepository(db *gorm.DB) collection.CollectionRepository {
	return &CollectionGormRepository{db: db}
}

func (repo *CollectionGormRepository) Create(ctx context.Context, c *collection.Collection) error {
	row := dbschema.NewSchemaCollection(c)
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"user ID already exists",
				errors.Join(collection.ErrUserIDAlreadyExist, err),
				"",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create collection",
			err,
			"",
		)
	}

	created := row.EtoD()
	*c = *created
	return nil
}

func (repo *CollectionGormRepository) DeleteByUserID(ctx context.Context, userID string) (*collection.Collection, error) {
	var rows []dbschema.Collection
	err := repo.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("user_id = ?", userID).
		Delete(&rows).
		Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete collection",
			err,
			"",
		)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].EtoD(), nil
}

func (repo *CollectionGormRepository) List(ctx context.Context) ([]*collection.Collection, error) {
	var rows []dbschema.Collection
	if err := repo.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list collections",
			err,
			"",
		)
	}

	result := make([]*collection.Collection, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].EtoD())
	}
	return result, nil
}

func (repo *CollectionGormRepository) Ping(ctx context.Context) error {
	sqlDB, err := repo.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
