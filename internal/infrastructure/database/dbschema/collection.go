package dbschema

import (
	"time"

	"github.com/janhq/chat-engine/internal/domain/collection"
)

// Collection is the persisted per-user collection row. The table itself is created by the SQL migrations.
type Collection struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_collections_user_id"`
	Name      *string   `gorm:"type:varchar(255)"`
	Action    string    `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Collection) TableName() string {
	return "collections"
}

// NewSchemaCollection converts a domain collection into a schema instance.
func NewSchemaCollection(c *collection.Collection) *Collection {
	if c == nil {
		return nil
	}
	return &Collection{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Action:    string(c.Action),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// EtoD converts a schema collection back to the domain representation.
func (c *Collection) EtoD() *collection.Collection {
	if c == nil {
		return nil
	}
	return &collection.Collection{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Action:    collection.Action(c.Action),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
