package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/notification"
)

type SetReadRequest struct {
	IsRead bool `json:"is_read"`
}

// NotificationHandler serves a seller's own notifications. The signed-in user
// is the seller; the repository scopes every write to it.
type NotificationHandler struct {
	repo notification.Repository
}

func NewNotificationHandler(repo notification.Repository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) RegisterRoutes(router chi.Router) {
	router.Get("/notifications", h.handleList)
	router.Patch("/notifications/{id}/read", h.handleSetRead)
	router.Delete("/notifications/{id}", h.handleDelete)
}

func (h *NotificationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	notifications, err := h.repo.ListBySeller(r.Context(), sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("handler: failed to list notifications")
		respondWithError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) handleSetRead(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	requestPayload := SetReadRequest{IsRead: true}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	if err := h.repo.SetRead(r.Context(), id, sellerID, requestPayload.IsRead); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"is_read": requestPayload.IsRead})
}

func (h *NotificationHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.repo.Delete(r.Context(), id, sellerID); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
