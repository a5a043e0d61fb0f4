package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/storefront/internal/inventory"
)

type StockResponse struct {
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int       `json:"quantity"`
	CanSatisfy *bool     `json:"can_satisfy,omitempty"`
}

// ProductHandler serves the stock badge reads.
type ProductHandler struct {
	inventory *inventory.Gateway
}

func NewProductHandler(gateway *inventory.Gateway) *ProductHandler {
	return &ProductHandler{inventory: gateway}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products/{id}/stock", h.handleGetStock)
}

func (h *ProductHandler) handleGetStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	quantity, err := h.inventory.GetQuantity(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get stock")
		return
	}

	response := StockResponse{ProductID: id, Quantity: quantity}

	// Optional ?qty=N answers "can this request be satisfied" for the UI.
	if qtyParam := r.URL.Query().Get("qty"); qtyParam != "" {
		qty, err := strconv.Atoi(qtyParam)
		if err != nil || qty < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid qty parameter")
			return
		}
		ok := quantity >= qty
		response.CanSatisfy = &ok
	}

	respondWithJSON(w, http.StatusOK, response)
}
