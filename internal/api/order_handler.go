package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type placeOrderRequestDTO struct {
	Items           []domain.CartLine      `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
	PaymentDetails  *domain.PaymentDetails `json:"paymentDetails"`
	Subtotal        float64                `json:"subtotal"`
	Discount        float64                `json:"discount"`
	AppliedCoupon   *domain.Coupon         `json:"appliedCoupon"`
}

type updateStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

type cancelOrderRequestDTO struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	Success bool          `json:"success,omitempty"`
	Order   *domain.Order `json:"order"`
	Message string        `json:"message,omitempty"`
}

// PlaceOrder runs checkout. The response carries only the order summary; the
// client fetches the full document from the orders endpoints afterwards.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req placeOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	couponCode := ""
	if req.AppliedCoupon != nil {
		couponCode = req.AppliedCoupon.Code
	}

	order, err := h.orders.PlaceOrder(r.Context(), userID, service.PlaceOrderInput{
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  req.PaymentDetails,
		Subtotal:        req.Subtotal,
		Discount:        req.Discount,
		CouponCode:      couponCode,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, struct {
		Success bool                `json:"success"`
		Order   domain.OrderSummary `json:"order"`
	}{Success: true, Order: order.Summary()})
}

// ListOrders returns the user's orders newest first. A single order can be
// requested with the orderId query parameter, which the order pages use.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	if orderID := r.URL.Query().Get("orderId"); orderID != "" {
		order, err := h.orders.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, orderResponse{Order: order})
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	respondJSON(w, http.StatusOK, struct {
		Orders []domain.Order `json:"orders"`
	}{Orders: orders})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderId")

	order, err := h.orders.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orderResponse{Order: order})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderId")

	var req updateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "Status is required")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), userID, orderID, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orderResponse{Success: true, Order: order})
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderId")

	// The body is optional; a missing or empty reason gets the default note.
	var req cancelOrderRequestDTO
	_ = json.NewDecoder(r.Body).Decode(&req)

	order, err := h.orders.Cancel(r.Context(), userID, orderID, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orderResponse{
		Success: true,
		Order:   order,
		Message: "Order cancelled successfully",
	})
}
