package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mysteryvault/storefront/internal/cache"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/events"
	"github.com/mysteryvault/storefront/internal/repository"
	"github.com/mysteryvault/storefront/internal/service"
	"github.com/mysteryvault/storefront/internal/token"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

// newTestRouter wires the real services over in-memory storage and a
// miniredis-backed cart cache, so requests travel the full stack.
func newTestRouter(t *testing.T) (http.Handler, *token.JWTMaker) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	maker, err := token.NewJWTMaker(testSigningKey, time.Hour)
	require.NoError(t, err)

	logger := zerolog.Nop()
	carts := service.NewCartService(newFakeCartRepo(), cache.NewRedisCache(client), logger)
	orders := service.NewOrderService(newFakeOrderRepo(), carts, service.NewSimulatedGateway(0, 0), events.NopPublisher{}, logger)
	users := service.NewUserService(newFakeUserRepo(), newFakeAddressRepo(), carts, logger)

	router := NewRouter(RouterDeps{
		Carts:      carts,
		Orders:     orders,
		Users:      users,
		TokenMaker: maker,
		Logger:     logger,
	})
	return router, maker
}

// sessionFor mints a cookie for a caller without going through signin.
func sessionFor(t *testing.T, maker *token.JWTMaker, userID string) *http.Cookie {
	t.Helper()
	signed, err := maker.Create(userID)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookie, Value: signed}
}

func doRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*domain.Cart)}
}

func copyCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.CartLine(nil), c.Items...)
	return &out
}

func (f *fakeCartRepo) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (f *fakeCartRepo) InsertCart(_ context.Context, cart *domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.carts[cart.UserID]; ok {
		return repository.ErrVersionConflict
	}
	cart.Version = 1
	f.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (f *fakeCartRepo) ReplaceCart(_ context.Context, cart *domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.carts[cart.UserID]
	if !ok || existing.Version != cart.Version {
		return repository.ErrVersionConflict
	}
	cart.Version++
	f.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (f *fakeCartRepo) SetItemQuantity(_ context.Context, userID string, itemID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (f *fakeCartRepo) RemoveItem(_ context.Context, userID string, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for i, item := range cart.Items {
		if item.ItemID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeCartRepo) DeleteCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(f.carts, userID)
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func copyOrder(o *domain.Order) *domain.Order {
	out := *o
	out.Items = append([]domain.CartLine(nil), o.Items...)
	if o.Tracking != nil {
		tracking := *o.Tracking
		tracking.Updates = append([]domain.TrackingUpdate(nil), o.Tracking.Updates...)
		out.Tracking = &tracking
	}
	return &out
}

func (f *fakeOrderRepo) InsertOrder(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = copyOrder(order)
	return nil
}

func (f *fakeOrderRepo) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *copyOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeOrderRepo) ApplyTransition(_ context.Context, orderID string, t repository.StatusTransition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
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

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) InsertUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeAddressRepo struct {
	mu        sync.Mutex
	addresses map[string]*domain.Address
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: make(map[string]*domain.Address)}
}

func (f *fakeAddressRepo) GetAddress(_ context.Context, userID string) (*domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	address, ok := f.addresses[userID]
	if !ok {
		return nil, repository.ErrAddressNotFound
	}
	clone := *address
	return &clone, nil
}

func (f *fakeAddressRepo) UpsertAddress(_ context.Context, address *domain.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *address
	f.addresses[address.UserID] = &clone
	return nil
}

func (f *fakeAddressRepo) DeleteAddress(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.addresses, userID)
	return nil
}
