package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

// InitDB opens a MySQL pool. parseTime is forced on because sessions scan
// DATETIME columns into time.Time.
func InitDB(dbURL string, logger zerolog.Logger) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_URL: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Str("db", cfg.DBName).Msg("Connected to database")
	return db, nil
}

func RunMigrations(db *sql.DB, logger zerolog.Logger) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(64) NOT NULL,
			role VARCHAR(16) NOT NULL,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			ip_address VARCHAR(64) NOT NULL DEFAULT '',
			user_agent VARCHAR(255) NOT NULL DEFAULT '',
			PRIMARY KEY (id, role),
			INDEX idx_expires_at (expires_at)
		);`,
		`CREATE TABLE IF NOT EXISTS site_settings (
			id TINYINT PRIMARY KEY,
			is_locked BOOLEAN NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS menu_categories (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			position INT NOT NULL DEFAULT 0,
			hidden BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			row_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			category_id VARCHAR(64) NOT NULL,
			position INT NOT NULL,
			item_id VARCHAR(64),
			name VARCHAR(200) NOT NULL,
			description TEXT NOT NULL,
			price VARCHAR(50) NOT NULL,
			INDEX idx_category_position (category_id, position),
			INDEX idx_item_id (item_id),
			FOREIGN KEY (category_id) REFERENCES menu_categories(id) ON DELETE CASCADE
		);`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	logger.Info().Msg("Migrations complete")
	return nil
}
