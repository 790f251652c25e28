// Package store holds the repositories behind the REST API. Each repository
// has an in-memory implementation used by default and in tests, and a MySQL
// implementation selected by DB_URL. Sessions can also live in Redis.
package store

import (
	"context"
	"errors"

	"embruns/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
)

// SessionRepository keeps one namespace per role: a visitor session id is
// never visible through an admin lookup.
type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, role models.SessionRole, id string) (*models.Session, error)
	Delete(ctx context.Context, role models.SessionRole, id string) error
}

type SettingsRepository interface {
	// Get returns ErrNotFound until settings were saved once.
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings models.SiteSettings) error
}

type MenuRepository interface {
	List(ctx context.Context) ([]models.MenuCategory, error)
	Get(ctx context.Context, categoryID string) (*models.MenuCategory, error)
	ReplaceCategory(ctx context.Context, categoryID string, update models.MenuCategoryUpdate) error
	AppendItem(ctx context.Context, categoryID string, item models.MenuItem) error
	UpdateItem(ctx context.Context, categoryID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error)
	DeleteItemByID(ctx context.Context, categoryID, itemID string) error
	DeleteItemAt(ctx context.Context, categoryID string, index int) error
	// Seed inserts categories only when the menu is empty.
	Seed(ctx context.Context, categories []models.MenuCategory) error
}

// applyPatch copies the set fields of p onto item, empty strings included.
func applyPatch(item *models.MenuItem, p models.MenuItemPatch) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
}
