package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/service"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartLineDTO struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// saveCartRequestDTO accepts either a single newItem or a cartItems batch.
// Only the id and quantity are read; everything else is looked up server-side.
type saveCartRequestDTO struct {
	CartItems     []cartLineDTO  `json:"cartItems"`
	NewItem       *cartLineDTO   `json:"newItem"`
	AppliedCoupon *domain.Coupon `json:"appliedCoupon"`
}

type removeItemRequestDTO struct {
	ItemID int64 `json:"itemId"`
}

type updateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Success   bool              `json:"success,omitempty"`
	CartItems []domain.CartLine `json:"cartItems"`
}

func cartItems(cart *domain.Cart) []domain.CartLine {
	if cart.Items == nil {
		return []domain.CartLine{}
	}
	return cart.Items
}

// SaveCart merges items into the cart. A newItem takes precedence over the
// cartItems batch, matching the payload the storefront client sends.
func (h *CartHandler) SaveCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req saveCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	lines := req.CartItems
	if req.NewItem != nil {
		lines = []cartLineDTO{*req.NewItem}
	}

	inputs := make([]service.AddItemInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, service.AddItemInput{ItemID: line.ID, Quantity: line.Quantity})
	}

	couponCode := ""
	if req.AppliedCoupon != nil {
		couponCode = req.AppliedCoupon.Code
	}

	cart, err := h.carts.AddItems(r.Context(), userID, inputs, couponCode)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{Success: true, CartItems: cartItems(cart)})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	cart, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{CartItems: cartItems(cart)})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req removeItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "Missing item ID")
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), userID, req.ItemID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{Success: true, CartItems: cartItems(cart)})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "itemId must be a positive integer")
		return
	}

	var req updateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.SetQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{Success: true, CartItems: cartItems(cart)})
}
