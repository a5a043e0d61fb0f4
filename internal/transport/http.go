package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/handler"
	"github.com/vasiliy-maslov/storefront/internal/inventory"
	"github.com/vasiliy-maslov/storefront/internal/notification"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

type Deps struct {
	Carts         *cart.Manager
	Checkout      *checkout.Service
	Orders        order.Service
	Notifications notification.Repository
	Inventory     *inventory.Gateway
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(identityMiddleware)

		handler.NewCartHandler(deps.Carts).RegisterRoutes(r)
		handler.NewCheckoutHandler(deps.Checkout, deps.Carts).RegisterRoutes(r)
		handler.NewOrderHandler(deps.Orders).RegisterRoutes(r)
		handler.NewNotificationHandler(deps.Notifications).RegisterRoutes(r)
		handler.NewProductHandler(deps.Inventory).RegisterRoutes(r)
	})

	return r
}

// identityMiddleware lifts the authenticated user id from the X-User-ID
// header onto the context. The header is set by the edge proxy after token
// verification; this service only consumes the resolved identity.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if userID, err := uuid.FromString(raw); err == nil {
				r = r.WithContext(auth.WithUser(r.Context(), userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}
