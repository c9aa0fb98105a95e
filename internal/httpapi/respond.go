package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondDomainError translates the service error taxonomy into the HTTP
// envelope. Every branch is side-effect free: by the time an error reaches
// here the operation either never mutated state or fully rolled back.
func respondDomainError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var insufficient *domain.InsufficientStockError
	var transient *domain.TransientStoreError

	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, "validation_error", validation.Error())
	case errors.As(err, &insufficient):
		respondError(w, http.StatusBadRequest, "insufficient_stock", insufficient.Error())
	case errors.As(err, &transient):
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", transient.Error())
	case errors.Is(err, domain.ErrCustomerOnly), errors.Is(err, domain.ErrAdminOnly):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		respondError(w, http.StatusBadRequest, "duplicate_email", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCartItemNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
