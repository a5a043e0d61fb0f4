package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
)

type CheckoutRequest struct {
	Address        string `json:"address" validate:"required"`
	RecipientName  string `json:"recipient_name" validate:"required"`
	RecipientPhone string `json:"recipient_phone" validate:"required"`
	Note           string `json:"note"`
}

type CheckoutHandler struct {
	svc      *checkout.Service
	carts    *cart.Manager
	validate *validator.Validate
}

func NewCheckoutHandler(svc *checkout.Service, carts *cart.Manager) *CheckoutHandler {
	return &CheckoutHandler{
		svc:      svc,
		carts:    carts,
		validate: validator.New(),
	}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout", h.handleCheckout)
}

func (h *CheckoutHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var requestPayload CheckoutRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("handler: failed to decode checkout payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		if !respondWithValidationErrors(w, err) {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	store := h.carts.ForUser(userID)

	result, err := h.svc.Checkout(r.Context(), store, checkout.Request{
		Address:        requestPayload.Address,
		RecipientName:  requestPayload.RecipientName,
		RecipientPhone: requestPayload.RecipientPhone,
		Note:           requestPayload.Note,
	})
	if err != nil {
		if !errors.Is(err, checkout.ErrCheckoutInProgress) && !errors.Is(err, checkout.ErrInvalidInput) {
			log.Error().Err(err).Stringer("user_id", userID).Msg("handler: checkout failed")
		}
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}
