package service

import (
	"context"
	"testing"

	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartService() (*CartService, *memCartRepo, *memCache) {
	repo := newMemCartRepo()
	c := newMemCache()
	return NewCartService(repo, c, zerolog.Nop()), repo, c
}

func TestAddItems_CreatesCart(t *testing.T) {
	svc, _, _ := newTestCartService()

	cart, err := svc.AddItems(context.Background(), "user-1", []AddItemInput{{ItemID: 1, Quantity: 2}}, "")

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Items[0].ItemID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	// item data comes from the catalog, not the client
	assert.Equal(t, "Gaming Legends Box", cart.Items[0].Name)
	assert.InDelta(t, 3999.99, cart.Items[0].Price, 0.001)
}

func TestAddItems_DefaultsQuantityToOne(t *testing.T) {
	svc, _, _ := newTestCartService()

	cart, err := svc.AddItems(context.Background(), "user-1", []AddItemInput{{ItemID: 2}}, "")

	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestAddItems_MergesQuantities(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 2}}, "")
	require.NoError(t, err)

	cart, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 3}}, "")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItems_AppendsNewLines(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	cart, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 3, Quantity: 2}}, "")
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(3), cart.Items[1].ItemID)
}

func TestAddItems_EmptyInput(t *testing.T) {
	svc, _, _ := newTestCartService()

	_, err := svc.AddItems(context.Background(), "user-1", nil, "")

	assertServiceError(t, err, CodeValidation)
}

func TestAddItems_UnknownItem(t *testing.T) {
	svc, _, _ := newTestCartService()

	_, err := svc.AddItems(context.Background(), "user-1", []AddItemInput{{ItemID: 999}}, "")

	assertServiceError(t, err, CodeValidation)
}

func TestAddItems_AppliesCoupon(t *testing.T) {
	svc, _, _ := newTestCartService()

	// one Gaming Legends Box (3999.99) clears the MYSTERY20 minimum
	cart, err := svc.AddItems(context.Background(), "user-1", []AddItemInput{{ItemID: 1, Quantity: 1}}, "MYSTERY20")

	require.NoError(t, err)
	require.NotNil(t, cart.AppliedCoupon)
	assert.Equal(t, "MYSTERY20", cart.AppliedCoupon.Code)
	assert.Equal(t, domain.DiscountPercentage, cart.AppliedCoupon.DiscountType)
}

func TestAddItems_RejectsCouponBelowMinimum(t *testing.T) {
	svc, _, _ := newTestCartService()

	// TECH30 needs a 5000 subtotal; one Lifestyle box is 2799.99
	_, err := svc.AddItems(context.Background(), "user-1", []AddItemInput{{ItemID: 3, Quantity: 1}}, "TECH30")

	assertServiceError(t, err, CodeValidation)
}

func TestAddItems_RetriesOnVersionConflict(t *testing.T) {
	svc, repo, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	repo.failReplaces = 1
	cart, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 1}}, "")

	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItems_GivesUpAfterRepeatedConflicts(t *testing.T) {
	svc, repo, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	repo.failReplaces = maxMergeRetries
	_, err = svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 1}}, "")

	assertServiceError(t, err, CodeConflict)
}

func TestAddItems_InvalidatesCache(t *testing.T) {
	svc, _, cartCache := newTestCartService()
	ctx := context.Background()

	cartCache.Set(ctx, "user-1", &domain.Cart{UserID: "user-1"})

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1}}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, cartCache.deletes)
}

func TestGetCart_EmptyWhenMissing(t *testing.T) {
	svc, _, _ := newTestCartService()

	cart, err := svc.GetCart(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "nobody", cart.UserID)
}

func TestGetCart_ServedFromCache(t *testing.T) {
	svc, _, cartCache := newTestCartService()
	ctx := context.Background()

	cached := &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartLine{{ItemID: 6, Quantity: 4}},
	}
	require.NoError(t, cartCache.Set(ctx, "user-1", cached))

	cart, err := svc.GetCart(ctx, "user-1")

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

func TestSetQuantity_Updates(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, "user-1", 1, 7)

	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1, Quantity: 2}}, "")
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, "user-1", 1, 0)

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestSetQuantity_MissingItem(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1}}, "")
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, "user-1", 5, 3)

	assertServiceError(t, err, CodeNotFound)
}

func TestRemoveItem_RemovesLine(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1}, {ItemID: 2}}, "")
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "user-1", 1)

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ItemID)
}

func TestRemoveItem_AbsentItemIsNoop(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []AddItemInput{{ItemID: 1}}, "")
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "user-1", 99)

	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestRemoveItem_NoCart(t *testing.T) {
	svc, _, _ := newTestCartService()

	_, err := svc.RemoveItem(context.Background(), "nobody", 1)

	assertServiceError(t, err, CodeNotFound)
}

func TestClearCart_ToleratesMissingCart(t *testing.T) {
	svc, _, _ := newTestCartService()

	assert.NoError(t, svc.ClearCart(context.Background(), "nobody"))
}

func assertServiceError(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, code, svcErr.Code)
}
