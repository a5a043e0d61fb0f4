package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/cart"
)

type AddLineRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	UnitPrice    float64   `json:"unit_price" validate:"gte=0"`
	Quantity     int       `json:"quantity" validate:"omitempty,min=1"`
	ImageRef     string    `json:"image_ref"`
	OptionsLabel string    `json:"options_label"`
	SizeML       *int      `json:"size_ml,omitempty" validate:"omitempty,min=1"`
}

type CartResponse struct {
	Lines        []cart.Line `json:"lines"`
	BuyNow       *cart.Line  `json:"buy_now,omitempty"`
	BuyNowActive bool        `json:"buy_now_active"`
	ItemCount    int         `json:"item_count"`
	Total        float64     `json:"total"`
}

// CartHandler exposes the cart mutations over HTTP. Every route requires the
// signed-in user the middleware placed on the context.
type CartHandler struct {
	carts    *cart.Manager
	validate *validator.Validate
}

func NewCartHandler(carts *cart.Manager) *CartHandler {
	return &CartHandler{
		carts:    carts,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart/items", h.handleAddLine)
	router.Post("/cart/items/{productID}/increase", h.handleIncrease)
	router.Post("/cart/items/{productID}/decrease", h.handleDecrease)
	router.Delete("/cart/items/{productID}", h.handleRemove)
	router.Delete("/cart", h.handleClear)
	router.Post("/cart/buy-now", h.handleSetBuyNow)
	router.Delete("/cart/buy-now", h.handleClearBuyNow)
}

func (h *CartHandler) storeForRequest(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return h.carts.ForUser(userID), true
}

func cartResponse(snap cart.Snapshot) CartResponse {
	return CartResponse{
		Lines:        snap.Lines,
		BuyNow:       snap.BuyNow,
		BuyNowActive: snap.BuyNowActive,
		ItemCount:    snap.ItemCount(),
		Total:        snap.Total(),
	}
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *CartHandler) decodeLine(w http.ResponseWriter, r *http.Request) (cart.Line, bool) {
	var requestPayload AddLineRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("handler: failed to decode cart line payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return cart.Line{}, false
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		if !respondWithValidationErrors(w, err) {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return cart.Line{}, false
	}

	return cart.Line{
		ProductID:    requestPayload.ProductID,
		Name:         requestPayload.Name,
		UnitPrice:    requestPayload.UnitPrice,
		Quantity:     requestPayload.Quantity,
		ImageRef:     requestPayload.ImageRef,
		OptionsLabel: requestPayload.OptionsLabel,
		SizeML:       requestPayload.SizeML,
	}, true
}

func (h *CartHandler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	line, ok := h.decodeLine(w, r)
	if !ok {
		return
	}

	store.Add(line)
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *CartHandler) productIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "productID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *CartHandler) handleIncrease(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	store.Increase(productID)
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *CartHandler) handleDecrease(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	store.Decrease(productID)
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	store.Remove(productID)
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	store.Clear()
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *CartHandler) handleSetBuyNow(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	line, ok := h.decodeLine(w, r)
	if !ok {
		return
	}

	store.SetBuyNow(line)
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *CartHandler) handleClearBuyNow(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	store.ClearBuyNow()
	respondWithJSON(w, http.StatusOK, cartResponse(store.Snapshot()))
}
