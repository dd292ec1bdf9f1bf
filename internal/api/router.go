package api

import (
	"net/http"

	"electrohive-be/internal/auth"
	"electrohive-be/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
	Payment *PaymentHandler
	Order   *OrderHandler
}

func NewRouter(tokens *auth.TokenManager, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RateLimit)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Get("/products", h.Product.List)
		r.Get("/products/{productID}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))

			r.Route("/cart", func(r chi.Router) {
				r.Post("/", h.Cart.AddItem)
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.Clear)
				r.Put("/{itemID}", h.Cart.UpdateItem)
				r.Delete("/{itemID}", h.Cart.RemoveItem)
			})

			r.Post("/payments/create-order", h.Payment.CreateOrder)
			r.Post("/payments/verify", h.Payment.Verify)

			r.Post("/orders", h.Order.Checkout)
			r.Get("/orders", h.Order.List)
		})
	})

	return r
}
