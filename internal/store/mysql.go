package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"embruns/internal/models"

	"github.com/rs/zerolog"
)

type MySQLSessionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMySQLSessionRepository(db *sql.DB, logger zerolog.Logger) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db, logger: logger}
}

func (r *MySQLSessionRepository) Create(ctx context.Context, s *models.Session) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, role, created_at, expires_at, ip_address, user_agent) VALUES (?, ?, ?, ?, ?, ?)",
		s.ID, string(s.Role), s.CreatedAt.UTC(), s.ExpiresAt.UTC(), s.IPAddress, s.UserAgent,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("role", string(s.Role)).Msg("Error creating session")
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *MySQLSessionRepository) Get(ctx context.Context, role models.SessionRole, id string) (*models.Session, error) {
	var s models.Session
	var roleStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, role, created_at, expires_at, ip_address, user_agent FROM sessions WHERE id = ? AND role = ?",
		id, string(role),
	).Scan(&s.ID, &roleStr, &s.CreatedAt, &s.ExpiresAt, &s.IPAddress, &s.UserAgent)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("role", string(role)).Msg("Error fetching session")
		return nil, fmt.Errorf("database error: %w", err)
	}
	s.Role = models.SessionRole(roleStr)
	return &s, nil
}

func (r *MySQLSessionRepository) Delete(ctx context.Context, role models.SessionRole, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ? AND role = ?", id, string(role))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type MySQLSettingsRepository struct {
	db *sql.DB
}

func NewMySQLSettingsRepository(db *sql.DB) *MySQLSettingsRepository {
	return &MySQLSettingsRepository{db: db}
}

func (r *MySQLSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var s models.SiteSettings
	err := r.db.QueryRowContext(ctx, "SELECT is_locked FROM site_settings WHERE id = 1").Scan(&s.IsLocked)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &s, nil
}

func (r *MySQLSettingsRepository) Save(ctx context.Context, settings models.SiteSettings) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO site_settings (id, is_locked) VALUES (1, ?) ON DUPLICATE KEY UPDATE is_locked = VALUES(is_locked)",
		settings.IsLocked,
	)
	if err != nil {
		return fmt.Errorf("failed to save site settings: %w", err)
	}
	return nil
}

// MySQLMenuRepository stores items in menu_items ordered by position. Positions
// may have gaps after deletes; only their relative order is meaningful.
type MySQLMenuRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMySQLMenuRepository(db *sql.DB, logger zerolog.Logger) *MySQLMenuRepository {
	return &MySQLMenuRepository{db: db, logger: logger}
}

func (r *MySQLMenuRepository) List(ctx context.Context) ([]models.MenuCategory, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, position, hidden FROM menu_categories ORDER BY position, id")
	if err != nil {
		r.logger.Error().Err(err).Msg("Error fetching menu categories")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var categories []models.MenuCategory
	byID := map[string]int{}
	for rows.Next() {
		var c models.MenuCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Order, &c.Hidden); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		c.Items = []models.MenuItem{}
		byID[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading categories: %w", err)
	}

	itemRows, err := r.db.QueryContext(ctx,
		"SELECT category_id, item_id, name, description, price FROM menu_items ORDER BY category_id, position, row_id",
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("Error fetching menu items")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var categoryID string
		var itemID sql.NullString
		var item models.MenuItem
		if err := itemRows.Scan(&categoryID, &itemID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, fmt.Errorf("error scanning item: %w", err)
		}
		if itemID.Valid {
			item.ID = itemID.String
		}
		if i, ok := byID[categoryID]; ok {
			categories[i].Items = append(categories[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error reading items: %w", err)
	}

	return categories, nil
}

func (r *MySQLMenuRepository) Get(ctx context.Context, categoryID string) (*models.MenuCategory, error) {
	menu, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range menu {
		if menu[i].ID == categoryID {
			return &menu[i], nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (r *MySQLMenuRepository) ReplaceCategory(ctx context.Context, categoryID string, update models.MenuCategoryUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error().Err(err).Msg("Error starting category replace transaction")
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockCategory(ctx, tx, categoryID); err != nil {
		return err
	}

	if update.Hidden != nil {
		_, err = tx.ExecContext(ctx, "UPDATE menu_categories SET name = ?, hidden = ? WHERE id = ?", update.Name, *update.Hidden, categoryID)
	} else {
		_, err = tx.ExecContext(ctx, "UPDATE menu_categories SET name = ? WHERE id = ?", update.Name, categoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM menu_items WHERE category_id = ?", categoryID); err != nil {
		return fmt.Errorf("failed to clear category items: %w", err)
	}

	for pos, item := range update.Items {
		if err := insertItem(ctx, tx, categoryID, pos, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID).Msg("Error committing category replace")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *MySQLMenuRepository) AppendItem(ctx context.Context, categoryID string, item models.MenuItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockCategory(ctx, tx, categoryID); err != nil {
		return err
	}

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM menu_items WHERE category_id = ?", categoryID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to compute item position: %w", err)
	}

	if err := insertItem(ctx, tx, categoryID, next, item); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *MySQLMenuRepository) UpdateItem(ctx context.Context, categoryID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockCategory(ctx, tx, categoryID); err != nil {
		return nil, err
	}

	item := models.MenuItem{ID: itemID}
	err = tx.QueryRowContext(ctx,
		"SELECT name, description, price FROM menu_items WHERE category_id = ? AND item_id = ? FOR UPDATE",
		categoryID, itemID,
	).Scan(&item.Name, &item.Description, &item.Price)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	applyPatch(&item, patch)

	_, err = tx.ExecContext(ctx,
		"UPDATE menu_items SET name = ?, description = ?, price = ? WHERE category_id = ? AND item_id = ?",
		item.Name, item.Description, item.Price, categoryID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &item, nil
}

func (r *MySQLMenuRepository) DeleteItemByID(ctx context.Context, categoryID, itemID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockCategory(ctx, tx, categoryID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM menu_items WHERE category_id = ? AND item_id = ?", categoryID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *MySQLMenuRepository) DeleteItemAt(ctx context.Context, categoryID string, index int) error {
	if index < 0 {
		return ErrItemNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockCategory(ctx, tx, categoryID); err != nil {
		return err
	}

	var rowID int64
	err = tx.QueryRowContext(ctx,
		"SELECT row_id FROM menu_items WHERE category_id = ? ORDER BY position, row_id LIMIT 1 OFFSET ?",
		categoryID, index,
	).Scan(&rowID)
	if err == sql.ErrNoRows {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM menu_items WHERE row_id = ?", rowID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *MySQLMenuRepository) Seed(ctx context.Context, categories []models.MenuCategory) error {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu_categories").Scan(&count); err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO menu_categories (id, name, position, hidden) VALUES (?, ?, ?, ?)",
			c.ID, c.Name, c.Order, c.Hidden,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.ID, err)
		}
		for pos, item := range c.Items {
			if err := insertItem(ctx, tx, c.ID, pos, item); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	r.logger.Info().Int("categories", len(categories)).Msg("Menu seeded")
	return nil
}

// lockCategory takes a row lock on the category so concurrent writers to the
// same category serialize.
func lockCategory(ctx context.Context, tx *sql.Tx, categoryID string) error {
	var id string
	err := tx.QueryRowContext(ctx, "SELECT id FROM menu_categories WHERE id = ? FOR UPDATE", categoryID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

func insertItem(ctx context.Context, tx *sql.Tx, categoryID string, position int, item models.MenuItem) error {
	var itemID sql.NullString
	if item.HasID() {
		itemID = sql.NullString{String: item.ID, Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO menu_items (category_id, position, item_id, name, description, price) VALUES (?, ?, ?, ?, ?, ?)",
		categoryID, position, itemID, item.Name, item.Description, item.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}
