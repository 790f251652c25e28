// Package menusync keeps the admin's in-memory copy of the menu and pushes
// edits back to the server.
//
// Local state is never patched from write responses. Every successful write
// is followed by a full reload, so what the operator sees after a save is
// exactly what the server holds. The one exception is ToggleSiteLock, which
// flips the flag locally before the write and does not reload or roll back.
package menusync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"embruns/internal/client/api"
	"embruns/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSession        = errors.New("menusync: no admin session")
	ErrCategoryNotFound = errors.New("menusync: category not found")
	ErrItemNotFound     = errors.New("menusync: item not found")
	ErrNotEditing       = errors.New("menusync: not in editing state")
	ErrNotConfirmed     = errors.New("menusync: deletion not confirmed")
)

// Field names an editable item field.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
)

func (f Field) Valid() bool {
	return f == FieldName || f == FieldDescription || f == FieldPrice
}

type Gateway interface {
	AdminMenu(ctx context.Context, token string) ([]models.MenuCategory, error)
	SiteSettings(ctx context.Context) (*models.SiteSettings, error)
	UpdateSiteSettings(ctx context.Context, token string, locked bool) (*models.SiteSettings, error)
	ReplaceCategory(ctx context.Context, token, categoryID string, update models.MenuCategoryUpdate) error
	AddItem(ctx context.Context, token, categoryID string, input models.MenuItemInput) (*models.MenuItem, error)
	PatchItem(ctx context.Context, token, categoryID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error)
	DeleteItem(ctx context.Context, token, categoryID, ref string) error
}

// Session supplies the admin token for every write and takes the forced
// logout when the server rejects it.
type Session interface {
	Token() string
	Expire()
}

// Engine is driven by a single operator. It holds no lock: the caller must
// not start a second write for the same editing key before the first returns.
type Engine struct {
	api     Gateway
	session Session
	confirm Confirmer
	logger  zerolog.Logger

	categories []models.MenuCategory
	// snapshot is the menu as last loaded, untouched by local edits.
	snapshot []models.MenuCategory
	settings models.SiteSettings
	loaded   bool

	editingCategory string
	editingItem     string
	addingTo        string
	newItem         models.MenuItemInput
}

func NewEngine(gw Gateway, sess Session, confirm Confirmer, logger zerolog.Logger) *Engine {
	return &Engine{
		api:        gw,
		session:    sess,
		confirm:    confirm,
		logger:     logger.With().Str("component", "menusync").Logger(),
		categories: []models.MenuCategory{},
		snapshot:   []models.MenuCategory{},
		settings:   models.SiteSettings{IsLocked: true},
	}
}

// Load fetches the admin menu and site settings in parallel and replaces
// local state only when both succeed.
func (e *Engine) Load(ctx context.Context) error {
	token := e.session.Token()
	if token == "" {
		return ErrNoSession
	}

	var (
		g        errgroup.Group
		menu     []models.MenuCategory
		settings *models.SiteSettings
	)
	g.Go(func() (err error) {
		if menu, err = e.api.AdminMenu(ctx, token); err != nil {
			return fmt.Errorf("load menu: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if settings, err = e.api.SiteSettings(ctx); err != nil {
			return fmt.Errorf("load site settings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		e.logger.Error().Err(err).Msg("Error loading admin view")
		return e.checkAuth(err)
	}

	e.categories = menu
	e.snapshot = models.CloneMenu(menu)
	e.settings = *settings
	e.loaded = true
	return nil
}

// ToggleSiteLock flips the lock flag locally, then writes it. On failure the
// local flag keeps the flipped value and may disagree with the server until
// the next Load.
func (e *Engine) ToggleSiteLock(ctx context.Context) error {
	token := e.session.Token()
	if token == "" {
		return ErrNoSession
	}

	next := !e.settings.IsLocked
	e.settings.IsLocked = next

	if _, err := e.api.UpdateSiteSettings(ctx, token, next); err != nil {
		e.logger.Warn().Err(err).Bool("local_is_locked", next).Msg("Site lock write failed, local state not rolled back")
		return e.checkAuth(err)
	}
	e.logger.Info().Bool("is_locked", next).Msg("Site lock updated")
	return nil
}

func (e *Engine) StartEditCategory(categoryID string) error {
	if _, _, err := e.category(categoryID); err != nil {
		return err
	}
	e.editingCategory = categoryID
	return nil
}

// RenameCategory changes the name in the local buffer only.
func (e *Engine) RenameCategory(categoryID, name string) error {
	if e.editingCategory != categoryID {
		return ErrNotEditing
	}
	_, idx, err := e.category(categoryID)
	if err != nil {
		return err
	}
	e.categories[idx].Name = name
	return nil
}

// SaveCategory sends the whole local category, items included, as a
// replacement, then reloads.
func (e *Engine) SaveCategory(ctx context.Context, categoryID string) error {
	token := e.session.Token()
	if token == "" {
		return ErrNoSession
	}
	cat, _, err := e.category(categoryID)
	if err != nil {
		return err
	}

	if err := e.api.ReplaceCategory(ctx, token, categoryID, categoryUpdate(cat)); err != nil {
		e.logger.Error().Err(err).Str("category_id", categoryID).Msg("Error saving category")
		return e.checkAuth(err)
	}

	e.editingCategory = ""
	return e.Load(ctx)
}

// CancelEditCategory drops local edits by reloading from the server. If the
// reload fails the menu as last loaded is restored.
func (e *Engine) CancelEditCategory(ctx context.Context) error {
	e.editingCategory = ""
	return e.reloadOrRestore(ctx)
}

// ShowAddItem opens the new-item buffer for a category.
func (e *Engine) ShowAddItem(categoryID string) error {
	if _, _, err := e.category(categoryID); err != nil {
		return err
	}
	e.addingTo = categoryID
	return nil
}

func (e *Engine) SetNewItem(field Field, value string) error {
	switch field {
	case FieldName:
		e.newItem.Name = value
	case FieldDescription:
		e.newItem.Description = value
	case FieldPrice:
		e.newItem.Price = value
	default:
		return fmt.Errorf("menusync: unknown field %q", field)
	}
	return nil
}

func (e *Engine) NewItem() models.MenuItemInput {
	return e.newItem
}

// AddItem appends an item to a category. An input with any empty field is
// ignored without error and without a request.
func (e *Engine) AddItem(ctx context.Context, categoryID string, input models.MenuItemInput) error {
	if blank(input.Name) || blank(input.Description) || blank(input.Price) {
		return nil
	}
	token := e.session.Token()
	if token == "" {
		return ErrNoSession
	}

	item, err := e.api.AddItem(ctx, token, categoryID, input)
	if err != nil {
		e.logger.Error().Err(err).Str("category_id", categoryID).Msg("Error adding menu item")
		return e.checkAuth(err)
	}
	e.logger.Info().Str("category_id", categoryID).Str("item_id", item.ID).Msg("Menu item added")

	loadErr := e.Load(ctx)
	e.newItem = models.MenuItemInput{}
	e.addingTo = ""
	return loadErr
}

// AddPendingItem submits the new-item buffer to the category it was opened for.
func (e *Engine) AddPendingItem(ctx context.Context) error {
	if e.addingTo == "" {
		return ErrNotEditing
	}
	return e.AddItem(ctx, e.addingTo, e.newItem)
}

// DeleteItem removes the item shown at index after the operator confirms.
// Without confirmation nothing is sent and ErrNotConfirmed is returned.
func (e *Engine) DeleteItem(ctx context.Context, categoryID string, index int) error {
	item, err := e.Item(categoryID, index)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Delete %q from the menu?", item.Name)
	if e.confirm == nil || !e.confirm.Confirm(ctx, prompt) {
		return ErrNotConfirmed
	}

	token := e.session.Token()
	if token == "" {
		return ErrNoSession
	}

	ref, err := e.ItemRefAt(categoryID, index)
	if err != nil {
		return err
	}
	if p, ok := ref.(Positional); ok {
		e.logger.Warn().Str("category_id", categoryID).Int("index", p.Index).Msg("Item has no id, deleting by position")
	}

	if err := e.api.DeleteItem(ctx, token, categoryID, ref.PathSegment()); err != nil {
		e.logger.Error().Err(err).Str("category_id", categoryID).Str("ref", ref.PathSegment()).Msg("Error deleting menu item")
		return e.checkAuth(err)
	}
	return e.Load(ctx)
}

func (e *Engine) StartEditItem(categoryID string, index int) error {
	if _, err := e.Item(categoryID, index); err != nil {
		return err
	}
	e.editingItem = editKey(categoryID, index)
	return nil
}

// EditItem changes one field of the item being edited. Local only.
func (e *Engine) EditItem(categoryID string, index int, field Field, value string) error {
	if e.editingItem != editKey(categoryID, index) {
		return ErrNotEditing
	}
	_, ci, err := e.category(categoryID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(e.categories[ci].Items) {
		return ErrItemNotFound
	}

	item := &e.categories[ci].Items[index]
	switch field {
	case FieldName:
		item.Name = value
	case FieldDescription:
		item.Description = value
	case FieldPrice:
		item.Price = value
	default:
		return fmt.Errorf("menusync: unknown field %q", field)
	}
	return nil
}

// SaveItem writes item's name, description and price to the item at index.
// Description and price may be empty; a blank name is rejected locally with a
// *api.ValidationError. An item with an id is patched in place. An item without one is saved by
// replacing its category, with only position index rewritten. On failure the
// editing state is kept so no edit is lost.
func (e *Engine) SaveItem(ctx context.Context, categoryID string, index int, item models.MenuItem) error {
	if blank(item.Name) {
		return &api.ValidationError{Field: string(FieldName), Message: "item name is required"}
	}
	token := e.session.Token()
	if token == "" {
		return ErrNoSession
	}

	var err error
	if item.HasID() {
		_, err = e.api.PatchItem(ctx, token, categoryID, item.ID, models.FullPatch(item))
	} else {
		var update models.MenuCategoryUpdate
		update, err = e.positionalUpdate(categoryID, index, item)
		if err == nil {
			err = e.api.ReplaceCategory(ctx, token, categoryID, update)
		}
	}
	if err != nil {
		e.logger.Error().Err(err).Str("category_id", categoryID).Int("index", index).Msg("Error saving menu item")
		return e.checkAuth(err)
	}

	loadErr := e.Load(ctx)
	e.editingItem = ""
	return loadErr
}

// CancelEditItem discards the item buffer by reloading. If the reload fails
// the menu as last loaded is restored, so no unsaved edit stays visible.
func (e *Engine) CancelEditItem(ctx context.Context) error {
	e.editingItem = ""
	return e.reloadOrRestore(ctx)
}

func (e *Engine) reloadOrRestore(ctx context.Context) error {
	err := e.Load(ctx)
	if err != nil {
		e.categories = models.CloneMenu(e.snapshot)
	}
	return err
}

// Categories returns a deep copy of the current menu.
func (e *Engine) Categories() []models.MenuCategory {
	return models.CloneMenu(e.categories)
}

func (e *Engine) Settings() models.SiteSettings {
	return e.settings
}

func (e *Engine) Loaded() bool {
	return e.loaded
}

func (e *Engine) EditingCategory() string {
	return e.editingCategory
}

// EditingItem returns the "categoryID-index" key of the open item editor.
func (e *Engine) EditingItem() string {
	return e.editingItem
}

func (e *Engine) Item(categoryID string, index int) (models.MenuItem, error) {
	cat, _, err := e.category(categoryID)
	if err != nil {
		return models.MenuItem{}, err
	}
	if index < 0 || index >= len(cat.Items) {
		return models.MenuItem{}, ErrItemNotFound
	}
	return cat.Items[index], nil
}

// ItemRefAt resolves how the item currently shown at index would be
// addressed in a server call.
func (e *Engine) ItemRefAt(categoryID string, index int) (ItemRef, error) {
	item, err := e.Item(categoryID, index)
	if err != nil {
		return nil, err
	}
	return RefFor(item, index), nil
}

func (e *Engine) positionalUpdate(categoryID string, index int, item models.MenuItem) (models.MenuCategoryUpdate, error) {
	cat, _, err := e.category(categoryID)
	if err != nil {
		return models.MenuCategoryUpdate{}, err
	}
	if index < 0 || index >= len(cat.Items) {
		return models.MenuCategoryUpdate{}, ErrItemNotFound
	}

	update := categoryUpdate(cat)
	target := update.Items[index]
	target.Name = item.Name
	target.Description = item.Description
	target.Price = item.Price
	update.Items[index] = target
	return update, nil
}

func (e *Engine) category(categoryID string) (models.MenuCategory, int, error) {
	for i := range e.categories {
		if e.categories[i].ID == categoryID {
			return e.categories[i], i, nil
		}
	}
	return models.MenuCategory{}, -1, ErrCategoryNotFound
}

// checkAuth forces the admin logout when the server rejected the token.
func (e *Engine) checkAuth(err error) error {
	if api.IsUnauthorized(err) {
		e.session.Expire()
	}
	return err
}

func categoryUpdate(cat models.MenuCategory) models.MenuCategoryUpdate {
	hidden := cat.Hidden
	return models.MenuCategoryUpdate{
		Name:   cat.Name,
		Hidden: &hidden,
		Items:  cat.Clone().Items,
	}
}

func editKey(categoryID string, index int) string {
	return fmt.Sprintf("%s-%d", categoryID, index)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
