package handlers

import (
	"net/http"

	"embruns/internal/middleware"
	"embruns/internal/models"
	"embruns/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	access      *AccessHandler
	accessSvc   *services.AccessService
	authService *services.AuthService
	siteService *services.SiteService
	menuService *services.MenuService
	logger      zerolog.Logger
}

func NewAdminHandler(access *services.AccessService, auth *services.AuthService, site *services.SiteService, menu *services.MenuService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		access:      NewAccessHandler(access, logger),
		accessSvc:   access,
		authService: auth,
		siteService: site,
		menuService: menu,
		logger:      logger,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp, err := h.accessSvc.AdminLogin(r.Context(), req.Password, sessionInfo(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Admin login failed")
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.access.check(w, r, models.RoleAdmin)
}

// Logout revokes the caller's admin session server-side.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := r.Context().Value(middleware.AdminTokenKey).(string)
	if err := h.authService.RevokeSession(r.Context(), token, models.RoleAdmin); err != nil {
		h.logger.Warn().Err(err).Msg("Admin session revoke failed")
	}
	respondWithJSON(w, http.StatusOK, models.MutationResponse{Success: true, Message: "Logged out"})
}

func (h *AdminHandler) UpdateSiteSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SiteSettingsUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	settings, err := h.siteService.SetLocked(r.Context(), *req.IsLocked)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "update_failed", "Failed to update site settings")
		return
	}
	if session, ok := middleware.GetAdminSession(r); ok {
		h.logger.Info().
			Str("session_id", session.ID).
			Str("request_id", middleware.GetRequestID(r)).
			Bool("is_locked", settings.IsLocked).
			Msg("Site lock changed")
	}

	respondWithJSON(w, http.StatusOK, models.SiteSettingsUpdateResponse{
		Success:  true,
		Message:  "Settings updated",
		Settings: *settings,
	})
}

func (h *AdminHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menuService.AdminMenu(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch admin menu")
		respondWithError(w, http.StatusInternalServerError, "fetch_failed", "Failed to fetch menu")
		return
	}
	respondWithJSON(w, http.StatusOK, menu)
}

func (h *AdminHandler) ReplaceCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["category_id"]

	var req models.MenuCategoryUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.menuService.ReplaceCategory(r.Context(), categoryID, req); err != nil {
		respondWithMenuError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.MutationResponse{Success: true, Message: "Category updated"})
}

func (h *AdminHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["category_id"]

	var req models.MenuItemInput
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	item, err := h.menuService.AddItem(r.Context(), categoryID, req)
	if err != nil {
		respondWithMenuError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, models.MutationResponse{Success: true, Message: "Item added", Item: item})
}

func (h *AdminHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.MenuItemPatch
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	item, err := h.menuService.PatchItem(r.Context(), vars["category_id"], vars["item_ref"], req)
	if err != nil {
		respondWithMenuError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.MutationResponse{Success: true, Message: "Item updated", Item: item})
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.menuService.DeleteItem(r.Context(), vars["category_id"], vars["item_ref"]); err != nil {
		respondWithMenuError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.MutationResponse{Success: true, Message: "Item deleted"})
}
