package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mysteryvault/storefront/internal/coupon"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/events"
	"github.com/mysteryvault/storefront/internal/repository"
	"github.com/rs/zerolog"
)

const (
	// Orders over this subtotal ship free; everything else pays a flat fee.
	freeShippingThreshold = 2000.0
	flatShippingFee       = 200.0

	// Client-submitted money amounts may disagree with the server-side
	// recomputation by at most this much before the order is rejected.
	moneyEpsilon = 0.01

	shippingCarrier   = "BlueDart Express"
	deliveryLeadTime  = 72 * time.Hour
	defaultCancelNote = "Customer requested cancellation"
)

type OrderService struct {
	orders    repository.OrderRepository
	carts     *CartService
	gateway   PaymentGateway
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewOrderService(orders repository.OrderRepository, carts *CartService, gateway PaymentGateway, publisher events.Publisher, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrderInput is the client's checkout payload. The money fields are
// treated as claims to verify, never as authoritative values.
type PlaceOrderInput struct {
	Items           []domain.CartLine
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
	PaymentDetails  *domain.PaymentDetails
	Subtotal        float64
	Discount        float64
	CouponCode      string
}

// PlaceOrder validates the checkout payload, recomputes every amount
// server-side, charges the payment gateway and persists the order in state
// confirmed. No partial state is written: the single insert happens after
// everything else has passed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, validationError("Items are required")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, validationError("Item quantity must be at least 1")
		}
	}

	if missing := missingAddressFields(in.ShippingAddress); len(missing) > 0 {
		return nil, validationError("Complete shipping address is required (missing: %s)", strings.Join(missing, ", "))
	}

	details, err := validatePayment(in.PaymentMethod, in.PaymentDetails)
	if err != nil {
		return nil, err
	}

	subtotal := 0.0
	for _, item := range in.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	if math.Abs(subtotal-in.Subtotal) > moneyEpsilon {
		return nil, validationError("Invalid subtotal calculation")
	}

	// The coupon is always re-evaluated here; the client-computed discount is
	// only a tamper check.
	var appliedCoupon *domain.Coupon
	discount := 0.0
	if in.CouponCode != "" {
		c, d, errEval := coupon.Evaluate(in.CouponCode, subtotal)
		if errEval != nil {
			return nil, validationError("%s", errEval.Error())
		}
		appliedCoupon = c
		discount = d
	}
	if math.Abs(discount-in.Discount) > moneyEpsilon {
		return nil, validationError("Invalid discount calculation")
	}

	shipping := flatShippingFee
	if subtotal > freeShippingThreshold {
		shipping = 0
	}
	total := subtotal - discount + shipping

	if err := s.gateway.Charge(ctx, userID, total); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, Errorf(CodePaymentFailed, "Payment failed. Try again.")
	}

	now := time.Now()
	order := &domain.Order{
		ID:              newOrderID(),
		UserID:          userID,
		Items:           in.Items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentDetails:  details,
		Subtotal:        subtotal,
		Discount:        discount,
		Shipping:        shipping,
		Total:           total,
		AppliedCoupon:   appliedCoupon,
		Status:          domain.OrderStatusConfirmed,
		Tracking: &domain.Tracking{
			Updates: []domain.TrackingUpdate{{
				Status:    domain.OrderStatusConfirmed,
				Message:   domain.StatusMessage(domain.OrderStatusConfirmed),
				Timestamp: now,
			}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	// The cart served its purpose; drop it so a stale copy cannot be checked
	// out twice. The order stands even if this cleanup fails.
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Str("order_id", order.ID).Msg("failed to clear cart after checkout")
	}

	s.publish(ctx, events.OrderEvent{
		Type:      events.TypeOrderCreated,
		OrderID:   order.ID,
		UserID:    userID,
		Status:    order.Status,
		Total:     order.Total,
		Timestamp: now,
	})

	return order, nil
}

func missingAddressFields(a domain.ShippingAddress) []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"fullName", a.FullName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func validatePayment(method domain.PaymentMethod, details *domain.PaymentDetails) (*domain.PaymentDetails, error) {
	if method == "" {
		return nil, validationError("Payment method is required")
	}
	if !method.Valid() {
		return nil, validationError("Invalid payment method: %s", method)
	}

	switch method {
	case domain.PaymentMethodCard:
		if details == nil || details.CardNumber == "" || details.ExpiryDate == "" || details.CVV == "" || details.CardName == "" {
			return nil, validationError("Complete card details are required")
		}
		return &domain.PaymentDetails{
			CardNumber: details.CardNumber,
			ExpiryDate: details.ExpiryDate,
			CVV:        details.CVV,
			CardName:   details.CardName,
		}, nil
	case domain.PaymentMethodUPI:
		if details == nil || details.UPIID == "" {
			return nil, validationError("UPI ID is required")
		}
		return &domain.PaymentDetails{UPIID: details.UPIID}, nil
	default:
		// cod and netbanking capture no payment fields.
		return nil, nil
	}
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, notFoundError("Order not found")
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, forbiddenError("Order belongs to another user")
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, userID)
}

// UpdateStatus moves the order along the lifecycle. Only transitions in the
// adjacency table are accepted, every transition appends a tracking update,
// and the first move to shipped generates tracking details. The underlying
// write is conditional on the status the order was read at.
func (s *OrderService) UpdateStatus(ctx context.Context, userID, orderID string, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, validationError("Invalid status: %s", newStatus)
	}
	if newStatus == domain.OrderStatusCancelled {
		return s.Cancel(ctx, userID, orderID, "")
	}

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, newStatus) {
		return nil, Errorf(CodeInvalidTransition, "Cannot transition order from %s to %s", order.Status, newStatus)
	}

	now := time.Now()
	t := repository.StatusTransition{
		From: order.Status,
		To:   newStatus,
		Update: domain.TrackingUpdate{
			Status:    newStatus,
			Message:   domain.StatusMessage(newStatus),
			Timestamp: now,
		},
	}

	if newStatus == domain.OrderStatusShipped && (order.Tracking == nil || order.Tracking.TrackingNumber == "") {
		t.Shipment = &repository.Shipment{
			TrackingNumber:    newTrackingNumber(),
			Carrier:           shippingCarrier,
			EstimatedDelivery: now.Add(deliveryLeadTime),
		}
	}

	if err := s.applyTransition(ctx, order, t); err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderEvent{
		Type:      events.TypeOrderStatusChanged,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    newStatus,
		Timestamp: now,
	})

	return order, nil
}

// Cancel is reachable only from confirmed or processing. It records the
// cancellation details and, like any other transition, appends a tracking
// update.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID, reason string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.Cancellable() {
		return nil, Errorf(CodeInvalidTransition, "Cannot cancel order with status: %s", order.Status)
	}

	if strings.TrimSpace(reason) == "" {
		reason = defaultCancelNote
	}

	now := time.Now()
	t := repository.StatusTransition{
		From: order.Status,
		To:   domain.OrderStatusCancelled,
		Update: domain.TrackingUpdate{
			Status:    domain.OrderStatusCancelled,
			Message:   domain.StatusMessage(domain.OrderStatusCancelled),
			Timestamp: now,
		},
		Cancellation: &domain.Cancellation{
			Reason:      reason,
			CancelledAt: now,
		},
	}

	if err := s.applyTransition(ctx, order, t); err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderEvent{
		Type:      events.TypeOrderCancelled,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    domain.OrderStatusCancelled,
		Reason:    reason,
		Timestamp: now,
	})

	return order, nil
}

// applyTransition performs the conditional write and mirrors the change onto
// the in-memory order so callers can return it without a re-read.
func (s *OrderService) applyTransition(ctx context.Context, order *domain.Order, t repository.StatusTransition) error {
	err := s.orders.ApplyTransition(ctx, order.ID, t)
	if errors.Is(err, repository.ErrStatusConflict) {
		return Errorf(CodeConflict, "Order was updated concurrently, please retry")
	}
	if err != nil {
		return err
	}

	order.Status = t.To
	order.UpdatedAt = t.Update.Timestamp
	if order.Tracking == nil {
		order.Tracking = &domain.Tracking{}
	}
	order.Tracking.Updates = append(order.Tracking.Updates, t.Update)
	if t.Shipment != nil {
		order.Tracking.TrackingNumber = t.Shipment.TrackingNumber
		order.Tracking.Carrier = t.Shipment.Carrier
		order.Tracking.EstimatedDelivery = t.Shipment.EstimatedDelivery
	}
	if t.Cancellation != nil {
		order.Cancellation = t.Cancellation
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, event events.OrderEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", event.OrderID).Str("type", event.Type).Msg("failed to publish order event")
	}
}

func newOrderID() string {
	return fmt.Sprintf("ORD-%s", uuid.NewString())
}

func newTrackingNumber() string {
	return fmt.Sprintf("TRK%d%s", time.Now().UnixMilli(), strings.ToUpper(uuid.NewString()[:6]))
}
