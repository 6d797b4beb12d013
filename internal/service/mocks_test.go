package service

import (
	"context"
	"sort"
	"sync"

	"github.com/mysteryvault/storefront/internal/cache"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/events"
	"github.com/mysteryvault/storefront/internal/repository"
)

// memCartRepo is an in-memory CartRepository mirroring the MongoDB
// implementation's semantics, including version conflicts.
type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart

	// failReplaces makes the next n ReplaceCart calls return a version
	// conflict, to exercise the merge retry loop.
	failReplaces int
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]*domain.Cart)}
}

func cloneCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.CartLine(nil), c.Items...)
	if c.AppliedCoupon != nil {
		coupon := *c.AppliedCoupon
		out.AppliedCoupon = &coupon
	}
	return &out
}

func (m *memCartRepo) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

func (m *memCartRepo) InsertCart(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[cart.UserID]; ok {
		return repository.ErrVersionConflict
	}
	cart.Version = 1
	m.carts[cart.UserID] = cloneCart(cart)
	return nil
}

func (m *memCartRepo) ReplaceCart(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReplaces > 0 {
		m.failReplaces--
		return repository.ErrVersionConflict
	}
	existing, ok := m.carts[cart.UserID]
	if !ok || existing.Version != cart.Version {
		return repository.ErrVersionConflict
	}
	cart.Version++
	m.carts[cart.UserID] = cloneCart(cart)
	return nil
}

func (m *memCartRepo) SetItemQuantity(_ context.Context, userID string, itemID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			cart.Items[i].Quantity = quantity
			cart.Version++
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (m *memCartRepo) RemoveItem(_ context.Context, userID string, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for i, item := range cart.Items {
		if item.ItemID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	cart.Version++
	return nil
}

func (m *memCartRepo) DeleteCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

// memCache is an in-memory CartCache recording invalidations.
type memCache struct {
	mu      sync.Mutex
	carts   map[string]*domain.Cart
	deletes int
}

func newMemCache() *memCache {
	return &memCache{carts: make(map[string]*domain.Cart)}
}

func (m *memCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cloneCart(cart), nil
}

func (m *memCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = cloneCart(cart)
	return nil
}

func (m *memCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	m.deletes++
	return nil
}

// memOrderRepo mirrors the MongoDB order repository, including the
// conditional status write.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	out := *o
	out.Items = append([]domain.CartLine(nil), o.Items...)
	if o.Tracking != nil {
		tracking := *o.Tracking
		tracking.Updates = append([]domain.TrackingUpdate(nil), o.Tracking.Updates...)
		out.Tracking = &tracking
	}
	if o.Cancellation != nil {
		c := *o.Cancellation
		out.Cancellation = &c
	}
	return &out
}

func (m *memOrderRepo) InsertOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *memOrderRepo) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (m *memOrderRepo) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, *cloneOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memOrderRepo) ApplyTransition(_ context.Context, orderID string, t repository.StatusTransition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok || order.Status != t.From {
		return repository.ErrStatusConflict
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

// stubGateway returns a canned result without any delay.
type stubGateway struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (g *stubGateway) Charge(context.Context, string, float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.err
}

// memPublisher records published events.
type memPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *memPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) all() []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderEvent(nil), p.events...)
}

// memUserRepo enforces the unique email index in memory.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) InsertUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserRepo) UpdateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type memAddressRepo struct {
	mu        sync.Mutex
	addresses map[string]*domain.Address
}

func newMemAddressRepo() *memAddressRepo {
	return &memAddressRepo{addresses: make(map[string]*domain.Address)}
}

func (m *memAddressRepo) GetAddress(_ context.Context, userID string) (*domain.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	address, ok := m.addresses[userID]
	if !ok {
		return nil, repository.ErrAddressNotFound
	}
	clone := *address
	return &clone, nil
}

func (m *memAddressRepo) UpsertAddress(_ context.Context, address *domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *address
	m.addresses[address.UserID] = &clone
	return nil
}

func (m *memAddressRepo) DeleteAddress(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.addresses, userID)
	return nil
}
