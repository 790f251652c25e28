package services

import (
	"context"
	"errors"
	"fmt"

	"embruns/internal/models"
	"embruns/internal/store"

	"github.com/rs/zerolog"
)

type SiteService struct {
	settings      store.SettingsRepository
	defaultLocked bool
	info          models.RestaurantInfo
	logger        zerolog.Logger
}

func NewSiteService(settings store.SettingsRepository, defaultLocked bool, info models.RestaurantInfo, logger zerolog.Logger) *SiteService {
	return &SiteService{
		settings:      settings,
		defaultLocked: defaultLocked,
		info:          info,
		logger:        logger,
	}
}

func (s *SiteService) Info() models.RestaurantInfo {
	return s.info
}

// Settings falls back to the configured default until an admin saves a value.
func (s *SiteService) Settings(ctx context.Context) (*models.SiteSettings, error) {
	settings, err := s.settings.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return &models.SiteSettings{IsLocked: s.defaultLocked}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error fetching site settings")
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}
	return settings, nil
}

func (s *SiteService) SetLocked(ctx context.Context, locked bool) (*models.SiteSettings, error) {
	settings := models.SiteSettings{IsLocked: locked}
	if err := s.settings.Save(ctx, settings); err != nil {
		s.logger.Error().Err(err).Msg("Error saving site settings")
		return nil, fmt.Errorf("failed to save site settings: %w", err)
	}
	s.logger.Info().Bool("is_locked", locked).Msg("Site lock updated")
	return &settings, nil
}
