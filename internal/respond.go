package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"ward-inventory-api/internal/models"
)

// listResponse is the envelope for all list endpoints
type listResponse struct {
	Items  interface{} `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// sendJSON writes v as a JSON response with the given status
func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// sendListResponse writes the standard list envelope
func sendListResponse(w http.ResponseWriter, items interface{}, total int, params listParams) {
	sendJSON(w, http.StatusOK, listResponse{
		Items:  items,
		Total:  total,
		Limit:  params.limit,
		Offset: params.offset,
	})
}

// sendDomainError maps domain errors onto HTTP statuses. Anything outside
// the domain taxonomy is a 500.
func sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrAlreadyResolved):
		http.Error(w, "request already resolved", http.StatusConflict)
	case errors.Is(err, models.ErrDuplicateKey):
		http.Error(w, "duplicate record", http.StatusConflict)
	case errors.Is(err, models.ErrReferentialConflict):
		http.Error(w, "record is referenced by other data", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// nullIfEmpty converts a trimmed-empty string pointer to nil
func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
