package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"embruns/internal/middleware"
	"embruns/internal/models"
	"embruns/internal/services"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON decodes the body into dst and runs struct validation. The
// returned error text is safe to show to API clients.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.New("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s: failed %q validation", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return errors.New("Invalid request body")
	}
	return nil
}

func sessionInfo(r *http.Request) services.SessionInfo {
	return services.SessionInfo{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, models.ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithMenuError maps menu service errors to status codes.
func respondWithMenuError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		respondWithError(w, http.StatusNotFound, "category_not_found", "Category not found")
	case errors.Is(err, services.ErrItemNotFound):
		respondWithError(w, http.StatusNotFound, "item_not_found", "Item not found")
	case errors.Is(err, services.ErrEmptyPatch):
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Nothing to update")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}
