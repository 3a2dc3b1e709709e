package collection

import (
	"context"
	"errors"
	"time"
)

// Action is the state flag of a collection.
type Action string

const (
	ActionActive Action = "ACTIVE"
	ActionPause  Action = "PAUSE"
)

func (a Action) Valid() bool {
	return a == ActionActive || a == ActionPause
}

var (
	ErrCollectionNotExist  = errors.New("collection not found")
	ErrUserIDAlreadyExist  = errors.New("user ID already exists")
	ErrDatabaseUnreachable = errors.New("database unreachable")
)

// Collection is a per-user record; one user owns at most one collection.
type Collection struct {
	ID        uint      `json:"collection_id"`
	UserID    string    `json:"user_id" validate:"required,max=128"`
	Name      *string   `json:"name,omitempty" validate:"omitempty,max=255"`
	Action    Action    `json:"action" validate:"required,oneof=ACTIVE PAUSE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCollection creates a collection for userID.
func NewCollection(userID string, name *string, action Action) *Collection {
	now := time.Now()
	return &Collection{
		UserID:    userID,
		Name:      name,
		Action:    action,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CollectionRepository persists collections. DeleteByUserID returns a nil collection when none matched.
type CollectionRepository interface {
	Create(ctx context.Context, c *Collection) error
	DeleteByUserID(ctx context.Context, userID string) (*Collection, error)
	List(ctx context.Context) ([]*Collection, error)
	Ping(ctx context.Context) error
}
