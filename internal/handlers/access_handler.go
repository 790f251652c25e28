package handlers

import (
	"net/http"

	"embruns/internal/models"
	"embruns/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type AccessHandler struct {
	accessService *services.AccessService
	logger        zerolog.Logger
}

func NewAccessHandler(access *services.AccessService, logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		accessService: access,
		logger:        logger,
	}
}

func (h *AccessHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.AccessRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp, err := h.accessService.VerifyAccessCode(r.Context(), req.Code, sessionInfo(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Access verification failed")
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AccessHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, models.RoleVisitor)
}

func (h *AccessHandler) check(w http.ResponseWriter, r *http.Request, role models.SessionRole) {
	token := mux.Vars(r)["session_id"]

	ok, err := h.accessService.CheckSession(r.Context(), token, role)
	if err != nil {
		h.logger.Error().Err(err).Str("role", string(role)).Msg("Session check failed")
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
		return
	}

	respondWithJSON(w, http.StatusOK, models.SessionCheckResponse{HasAccess: ok})
}
