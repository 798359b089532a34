package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/services"
)

// OrderController handles checkout and order-related requests
type OrderController struct {
	orders *services.OrderService
	logger *slog.Logger
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService, logger *slog.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

// CreateCheckoutSession opens a hosted checkout for the submitted cart.
func (oc *OrderController) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var input services.CheckoutInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, oc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	id, err := oc.orders.CreateCheckoutSession(ctx, input)
	if err != nil {
		writeError(w, r, oc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

type confirmPaymentRequest struct {
	SessionID string `json:"session_id"`
}

// ConfirmPayment records the outcome of a completed checkout session.
func (oc *OrderController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, oc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.ConfirmPayment(ctx, req.SessionID)
	if err != nil {
		writeError(w, r, oc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetOrdersByEmail returns a customer's orders.
func (oc *OrderController) GetOrdersByEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.orders.OrdersByEmail(ctx, mux.Vars(r)["email"])
	if err != nil {
		writeError(w, r, oc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetOrderByID returns a single order.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, oc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetOrders returns every order, newest first.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.orders.List(ctx)
	if err != nil {
		writeError(w, r, oc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus sets an order's status to one of the admin statuses.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateStatusInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, oc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.UpdateStatus(ctx, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, r, oc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// DeleteOrder removes an order and returns it.
func (oc *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.Delete(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, oc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order deleted successfully",
		"order":   order,
	})
}
