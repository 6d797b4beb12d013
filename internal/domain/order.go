package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// legalTransitions is the adjacency table of allowed status moves.
// Cancellation is a side branch reachable only from confirmed or processing.
var legalTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusConfirmed || s == OrderStatusProcessing
}

// StatusMessage is the human-readable tracking line recorded for each status.
func StatusMessage(s OrderStatus) string {
	switch s {
	case OrderStatusPending:
		return "Order is pending confirmation"
	case OrderStatusConfirmed:
		return "Order confirmed and being processed"
	case OrderStatusProcessing:
		return "Order is being prepared for shipment"
	case OrderStatusShipped:
		return "Order has been shipped"
	case OrderStatusDelivered:
		return "Order has been delivered"
	case OrderStatusCancelled:
		return "Order has been cancelled"
	}
	return "Order status updated to " + string(s)
}

type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
	PaymentMethodCOD        PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetbanking, PaymentMethodCOD:
		return true
	}
	return false
}

// PaymentDetails is tagged by the order's payment method. Card fields are set
// for "card", UPIID for "upi"; cod and netbanking carry no captured fields.
type PaymentDetails struct {
	CardNumber string `bson:"card_number,omitempty" json:"cardNumber,omitempty"`
	ExpiryDate string `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	CVV        string `bson:"cvv,omitempty" json:"cvv,omitempty"`
	CardName   string `bson:"card_name,omitempty" json:"cardName,omitempty"`
	UPIID      string `bson:"upi_id,omitempty" json:"upiId,omitempty"`
}

type ShippingAddress struct {
	FullName   string `bson:"full_name" json:"fullName"`
	Email      string `bson:"email" json:"email"`
	Phone      string `bson:"phone" json:"phone"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
	Landmark   string `bson:"landmark,omitempty" json:"landmark,omitempty"`
}

type Cancellation struct {
	Reason      string    `bson:"reason" json:"reason"`
	CancelledAt time.Time `bson:"cancelled_at" json:"cancelledAt"`
}

type TrackingUpdate struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Message   string      `bson:"message" json:"message"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Location  string      `bson:"location,omitempty" json:"location,omitempty"`
}

type Tracking struct {
	TrackingNumber    string           `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	Carrier           string           `bson:"carrier,omitempty" json:"carrier,omitempty"`
	EstimatedDelivery time.Time        `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
	Updates           []TrackingUpdate `bson:"updates" json:"updates"`
}

type Order struct {
	ID              string          `bson:"_id" json:"id"`
	UserID          string          `bson:"user_id" json:"userId"`
	Items           []CartLine      `bson:"items" json:"items"`
	ShippingAddress ShippingAddress `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `bson:"payment_method" json:"paymentMethod"`
	PaymentDetails  *PaymentDetails `bson:"payment_details,omitempty" json:"paymentDetails,omitempty"`
	Subtotal        float64         `bson:"subtotal" json:"subtotal"`
	Discount        float64         `bson:"discount" json:"discount"`
	Shipping        float64         `bson:"shipping" json:"shipping"`
	Total           float64         `bson:"total" json:"total"`
	AppliedCoupon   *Coupon         `bson:"applied_coupon,omitempty" json:"appliedCoupon,omitempty"`
	Status          OrderStatus     `bson:"status" json:"status"`
	Cancellation    *Cancellation   `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Tracking        *Tracking       `bson:"tracking,omitempty" json:"tracking,omitempty"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}

// OrderSummary is the minimal shape returned from checkout.
type OrderSummary struct {
	ID        string      `json:"id"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (o *Order) Summary() OrderSummary {
	return OrderSummary{ID: o.ID, Status: o.Status, Total: o.Total, CreatedAt: o.CreatedAt}
}
