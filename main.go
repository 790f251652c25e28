package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"embruns/internal/config"
	"embruns/internal/db"
	"embruns/internal/logger"
	"embruns/internal/router"
	"embruns/internal/services"
	"embruns/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type repositories struct {
	sessions store.SessionRepository
	settings store.SettingsRepository
	menu     store.MenuRepository
}

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Starting application")

	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("SESSION_SECRET not set, using default key")
	}

	var database *sql.DB
	if cfg.DBUrl != "" {
		var err error
		database, err = db.InitDB(cfg.DBUrl, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Database unavailable")
		}
		defer database.Close()

		if err := db.RunMigrations(database, log); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	} else {
		log.Warn().Msg("DB_URL not set, using in-memory storage")
	}

	var rc *redis.Client
	if cfg.RedisURL != "" {
		var err error
		rc, err = store.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis unavailable")
		}
		defer rc.Close()
	}

	repos := buildRepositories(database, rc, log)
	if err := repos.menu.Seed(context.Background(), db.SeedMenu()); err != nil {
		log.Fatal().Err(err).Msg("Menu seed failed")
	}

	accessHash, err := services.HashSecret(cfg.AccessCode, bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Access code hashing failed")
	}
	adminHash := []byte(cfg.AdminPasswordHash)
	if len(adminHash) == 0 {
		adminHash, err = services.HashSecret(cfg.AdminPassword, bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Admin password hashing failed")
		}
	}

	authService := services.NewAuthService(cfg.SessionSecret, cfg.SessionTTL, repos.sessions, log)
	siteService := services.NewSiteService(repos.settings, cfg.SiteLocked, db.RestaurantInfo(), log)
	svc := router.Services{
		Auth:   authService,
		Access: services.NewAccessService(accessHash, adminHash, siteService, authService, log),
		Site:   siteService,
		Menu:   services.NewMenuService(repos.menu, log),
	}

	r := router.SetupRouter(svc, router.DefaultOptions(), log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

func buildRepositories(database *sql.DB, rc *redis.Client, log zerolog.Logger) repositories {
	repos := repositories{
		sessions: store.NewMemorySessionRepository(),
		settings: store.NewMemorySettingsRepository(),
		menu:     store.NewMemoryMenuRepository(),
	}
	if database != nil {
		repos.sessions = store.NewMySQLSessionRepository(database, log)
		repos.settings = store.NewMySQLSettingsRepository(database)
		repos.menu = store.NewMySQLMenuRepository(database, log)
	}
	if rc != nil {
		repos.sessions = store.NewRedisSessionRepository(rc)
		log.Info().Msg("Sessions stored in Redis")
	}
	return repos
}
