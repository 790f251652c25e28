package store

import (
	"context"
	"sort"
	"sync"

	"embruns/internal/models"
)

type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[models.SessionRole]map[string]models.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: map[models.SessionRole]map[string]models.Session{
			models.RoleVisitor: {},
			models.RoleAdmin:   {},
		},
	}
}

func (r *MemorySessionRepository) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.sessions[s.Role]
	if !ok {
		return ErrNotFound
	}
	ns[s.ID] = *s
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, role models.SessionRole, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[role][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, role models.SessionRole, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions[role], id)
	return nil
}

type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings *models.SiteSettings
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{}
}

func (r *MemorySettingsRepository) Get(_ context.Context) (*models.SiteSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, ErrNotFound
	}
	s := *r.settings
	return &s, nil
}

func (r *MemorySettingsRepository) Save(_ context.Context, settings models.SiteSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = &settings
	return nil
}

type MemoryMenuRepository struct {
	mu         sync.RWMutex
	categories []models.MenuCategory
}

func NewMemoryMenuRepository() *MemoryMenuRepository {
	return &MemoryMenuRepository{}
}

func (r *MemoryMenuRepository) List(_ context.Context) ([]models.MenuCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := models.CloneMenu(r.categories)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *MemoryMenuRepository) Get(_ context.Context, categoryID string) (*models.MenuCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(categoryID)
	if i < 0 {
		return nil, ErrCategoryNotFound
	}
	c := r.categories[i].Clone()
	return &c, nil
}

func (r *MemoryMenuRepository) ReplaceCategory(_ context.Context, categoryID string, update models.MenuCategoryUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(categoryID)
	if i < 0 {
		return ErrCategoryNotFound
	}
	items := make([]models.MenuItem, len(update.Items))
	copy(items, update.Items)

	r.categories[i].Name = update.Name
	r.categories[i].Items = items
	if update.Hidden != nil {
		r.categories[i].Hidden = *update.Hidden
	}
	return nil
}

func (r *MemoryMenuRepository) AppendItem(_ context.Context, categoryID string, item models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(categoryID)
	if i < 0 {
		return ErrCategoryNotFound
	}
	r.categories[i].Items = append(r.categories[i].Items, item)
	return nil
}

func (r *MemoryMenuRepository) UpdateItem(_ context.Context, categoryID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(categoryID)
	if i < 0 {
		return nil, ErrCategoryNotFound
	}
	for j := range r.categories[i].Items {
		item := &r.categories[i].Items[j]
		if item.ID == itemID {
			applyPatch(item, patch)
			updated := *item
			return &updated, nil
		}
	}
	return nil, ErrItemNotFound
}

func (r *MemoryMenuRepository) DeleteItemByID(_ context.Context, categoryID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(categoryID)
	if i < 0 {
		return ErrCategoryNotFound
	}
	for j, item := range r.categories[i].Items {
		if item.ID == itemID {
			r.removeAt(i, j)
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *MemoryMenuRepository) DeleteItemAt(_ context.Context, categoryID string, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(categoryID)
	if i < 0 {
		return ErrCategoryNotFound
	}
	if index < 0 || index >= len(r.categories[i].Items) {
		return ErrItemNotFound
	}
	r.removeAt(i, index)
	return nil
}

func (r *MemoryMenuRepository) Seed(_ context.Context, categories []models.MenuCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.categories) > 0 {
		return nil
	}
	r.categories = models.CloneMenu(categories)
	return nil
}

func (r *MemoryMenuRepository) indexOf(categoryID string) int {
	for i := range r.categories {
		if r.categories[i].ID == categoryID {
			return i
		}
	}
	return -1
}

func (r *MemoryMenuRepository) removeAt(categoryIdx, itemIdx int) {
	items := r.categories[categoryIdx].Items
	out := make([]models.MenuItem, 0, len(items)-1)
	out = append(out, items[:itemIdx]...)
	out = append(out, items[itemIdx+1:]...)
	r.categories[categoryIdx].Items = out
}
