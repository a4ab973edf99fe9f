package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-repository-switch/domain"
)

type errorBody struct {
	Category string            `json:"category"`
	Message  string            `json:"message"`
	Field    string            `json:"field,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// StatusFor maps an error category to an HTTP status code.
func StatusFor(err error) int {
	switch domain.CategoryOf(err) {
	case domain.CategoryValidation:
		return http.StatusBadRequest
	case domain.CategoryNotFound:
		return http.StatusNotFound
	case domain.CategoryUnauthorized:
		return http.StatusUnauthorized
	case domain.CategoryNetwork:
		return http.StatusBadGateway
	case domain.CategoryCanceled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Category: string(domain.CategoryRepository), Message: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		body = errorBody{
			Category: string(de.Category),
			Message:  de.Message,
			Field:    de.Field,
			Fields:   de.Fields,
		}
	}
	writeJSON(w, StatusFor(err), map[string]errorBody{"error": body})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func accountID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("accountId")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, domain.NewValidationError("accountId", "must be a non-negative integer")
	}
	return id, nil
}
