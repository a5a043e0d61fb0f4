package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Patch("/orders/{id}/status", h.handleUpdateStatus)
	router.Post("/orders/{id}/cancel", h.handleCancel)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	orders, err := h.svc.GetByUserID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("handler: failed to list orders")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("handler: failed to get order")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateOrderStatusRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		if !respondWithValidationErrors(w, err) {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	err := h.svc.UpdateStatus(r.Context(), id, order.OrderStatus(requestPayload.Status))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": requestPayload.Status})
}

func (h *OrderHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": string(order.StatusCancelled)})
}
