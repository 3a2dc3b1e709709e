package collection

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

// CollectionService handles the collection CRUD rules.
type CollectionService struct {
	repo     CollectionRepository
	validate *validator.Validate
}

func NewCollectionService(repo CollectionRepository) *CollectionService {
	return &CollectionService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create stores a new collection. A second collection for the same user is a conflict.
func (s *CollectionService) Create(ctx context.Context, c *Collection) (*Collection, error) {
	if err := s.validate.Struct(c); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "collection validation failed", err, "")
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrUserIDAlreadyExist) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "user ID already exists", err, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create collection")
	}
	return c, nil
}

// DeleteByUserID removes the collection owned by userID.
func (s *CollectionService) DeleteByUserID(ctx context.Context, userID string) (*Collection, error) {
	if userID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "user ID is required", nil, "")
	}

	deleted, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete collection")
	}
	if deleted == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "collection not found", ErrCollectionNotExist, "")
	}
	return deleted, nil
}

// List returns every collection keyed by user ID. An empty store is reported as not found.
func (s *CollectionService) List(ctx context.Context) (map[string]*Collection, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list collections")
	}
	if len(rows) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "collection not found", ErrCollectionNotExist, "")
	}

	byUser := make(map[string]*Collection, len(rows))
	for _, row := range rows {
		byUser[row.UserID] = row
	}
	return byUser, nil
}

// Ready reports whether the store can be reached.
func (s *CollectionService) Ready(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "database unreachable", errors.Join(ErrDatabaseUnreachable, err), "")
	}
	return nil
}
