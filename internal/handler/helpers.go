package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/notification"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/product"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

func respondWithValidationErrors(w http.ResponseWriter, err error) bool {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag())
	}

	respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "Validation failed",
		Details: details,
	})
	return true
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, order.ErrAlreadyCancelled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
