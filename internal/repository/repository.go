package repository

import (
	"context"
	"time"

	"github.com/mysteryvault/storefront/internal/domain"
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// InsertCart creates the user's cart. A cart already existing for the
	// user surfaces as ErrVersionConflict so callers can re-merge.
	InsertCart(ctx context.Context, cart *domain.Cart) error
	// ReplaceCart writes the full line list conditionally on the version the
	// cart was read at, bumping it. A concurrent writer winning the race
	// surfaces as ErrVersionConflict.
	ReplaceCart(ctx context.Context, cart *domain.Cart) error
	SetItemQuantity(ctx context.Context, userID string, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, userID string, itemID int64) error
	DeleteCart(ctx context.Context, userID string) error
}

// Shipment carries the tracking fields populated on the first transition to shipped.
type Shipment struct {
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery time.Time
}

// StatusTransition is a conditional order-status write: it only applies while
// the order still has status From, so concurrent transitions cannot clobber
// each other.
type StatusTransition struct {
	From         domain.OrderStatus
	To           domain.OrderStatus
	Update       domain.TrackingUpdate
	Shipment     *Shipment
	Cancellation *domain.Cancellation
}

type OrderRepository interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	// ApplyTransition performs the conditional status write. It returns
	// ErrStatusConflict when the order no longer has the expected status.
	ApplyTransition(ctx context.Context, orderID string, t StatusTransition) error
}

type UserRepository interface {
	InsertUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
}

type AddressRepository interface {
	GetAddress(ctx context.Context, userID string) (*domain.Address, error)
	UpsertAddress(ctx context.Context, address *domain.Address) error
	DeleteAddress(ctx context.Context, userID string) error
}
