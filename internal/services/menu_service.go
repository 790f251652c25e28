package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"embruns/internal/models"
	"embruns/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrCategoryNotFound = store.ErrCategoryNotFound
	ErrItemNotFound     = store.ErrItemNotFound
	ErrEmptyPatch       = errors.New("nothing to update")
)

type MenuService struct {
	menu   store.MenuRepository
	logger zerolog.Logger
}

func NewMenuService(menu store.MenuRepository, logger zerolog.Logger) *MenuService {
	return &MenuService{
		menu:   menu,
		logger: logger,
	}
}

// PublicMenu omits hidden categories.
func (s *MenuService) PublicMenu(ctx context.Context) ([]models.MenuCategory, error) {
	menu, err := s.menu.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	public := make([]models.MenuCategory, 0, len(menu))
	for _, c := range menu {
		if !c.Hidden {
			public = append(public, c)
		}
	}
	return public, nil
}

func (s *MenuService) AdminMenu(ctx context.Context) ([]models.MenuCategory, error) {
	menu, err := s.menu.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	if menu == nil {
		menu = []models.MenuCategory{}
	}
	return menu, nil
}

func (s *MenuService) ReplaceCategory(ctx context.Context, categoryID string, update models.MenuCategoryUpdate) error {
	if update.Items == nil {
		update.Items = []models.MenuItem{}
	}
	if err := s.menu.ReplaceCategory(ctx, categoryID, update); err != nil {
		if !errors.Is(err, store.ErrCategoryNotFound) {
			s.logger.Error().Err(err).Str("category_id", categoryID).Msg("Error replacing category")
		}
		return err
	}

	s.logger.Info().
		Str("category_id", categoryID).
		Int("items", len(update.Items)).
		Msg("Category replaced")
	return nil
}

// AddItem appends a new item. New items always get an id so later edits can
// address them directly.
func (s *MenuService) AddItem(ctx context.Context, categoryID string, input models.MenuItemInput) (*models.MenuItem, error) {
	item := models.MenuItem{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}
	if err := s.menu.AppendItem(ctx, categoryID, item); err != nil {
		if !errors.Is(err, store.ErrCategoryNotFound) {
			s.logger.Error().Err(err).Str("category_id", categoryID).Msg("Error adding item")
		}
		return nil, err
	}

	s.logger.Info().Str("category_id", categoryID).Str("item_id", item.ID).Msg("Item added")
	return &item, nil
}

func (s *MenuService) PatchItem(ctx context.Context, categoryID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	item, err := s.menu.UpdateItem(ctx, categoryID, itemID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", categoryID).Str("item_id", itemID).Msg("Item updated")
	return item, nil
}

// DeleteItem removes the item whose id equals ref. When no item carries that
// id, ref is read as a position in the category's current item order.
func (s *MenuService) DeleteItem(ctx context.Context, categoryID, ref string) error {
	err := s.menu.DeleteItemByID(ctx, categoryID, ref)
	if err == nil {
		s.logger.Info().Str("category_id", categoryID).Str("item_id", ref).Msg("Item deleted by id")
		return nil
	}
	if !errors.Is(err, store.ErrItemNotFound) {
		return err
	}

	index, convErr := strconv.Atoi(ref)
	if convErr != nil {
		return store.ErrItemNotFound
	}
	if err := s.menu.DeleteItemAt(ctx, categoryID, index); err != nil {
		return err
	}

	s.logger.Info().Str("category_id", categoryID).Int("index", index).Msg("Item deleted by position")
	return nil
}
