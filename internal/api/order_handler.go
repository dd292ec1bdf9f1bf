package api

import (
	"math"
	"net/http"

	"electrohive-be/internal/cart"
	"electrohive-be/internal/middleware"
	"electrohive-be/internal/order"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderHandler struct {
	orders order.Repository
	carts  cart.Service
}

func NewOrderHandler(orders order.Repository, carts cart.Service) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts}
}

// Checkout snapshots the current cart into a pending order. The returned
// order id is the localOrderReference the client passes back on verify.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	view, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(view.Items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	items := make([]order.OrderItem, 0, len(view.Items))
	for _, it := range view.Items {
		pid, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		items = append(items, order.OrderItem{
			ProductID: pid,
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
		})
	}

	o := &order.Order{
		UserID: userID,
		Items:  items,
		// Prices are rupees; orders are kept in paise like the gateway.
		Amount:   int64(math.Round(view.TotalPrice * 100)),
		Currency: "INR",
		Status:   order.StatusPending,
	}
	if err := h.orders.Create(r.Context(), o); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order":   o,
	})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
	})
}
