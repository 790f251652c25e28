package handlers

import (
	"net/http"

	"embruns/internal/services"

	"github.com/rs/zerolog"
)

type PublicHandler struct {
	siteService *services.SiteService
	menuService *services.MenuService
	logger      zerolog.Logger
}

func NewPublicHandler(site *services.SiteService, menu *services.MenuService, logger zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		siteService: site,
		menuService: menu,
		logger:      logger,
	}
}

func (h *PublicHandler) GetRestaurantInfo(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.siteService.Info())
}

func (h *PublicHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menuService.PublicMenu(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch menu")
		respondWithError(w, http.StatusInternalServerError, "fetch_failed", "Failed to fetch menu")
		return
	}
	respondWithJSON(w, http.StatusOK, menu)
}

func (h *PublicHandler) GetSiteSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.siteService.Settings(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "fetch_failed", "Failed to fetch site settings")
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
