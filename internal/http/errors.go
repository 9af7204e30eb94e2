// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/market-helper/internal/merge"
	"github.com/fairyhunter13/market-helper/internal/model"
	"github.com/fairyhunter13/market-helper/internal/obs"
	"github.com/fairyhunter13/market-helper/internal/store"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.Logger.Error("response_encode_error", "error", err)
	}
}

// writeDomainError maps domain errors onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalid), errors.Is(err, merge.ErrSameProduct):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, merge.ErrProductNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		obs.Logger.Error("internal_error", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
