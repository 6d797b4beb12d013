package service

import (
	"context"
	"errors"
	"time"

	"github.com/mysteryvault/storefront/internal/cache"
	"github.com/mysteryvault/storefront/internal/catalog"
	"github.com/mysteryvault/storefront/internal/coupon"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// maxMergeRetries bounds the compare-and-swap retry loop for cart merges.
const maxMergeRetries = 3

type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	logger zerolog.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache, logger zerolog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cartCache,
		logger: logger,
	}
}

// AddItemInput identifies a catalog item and a quantity to merge into the cart.
type AddItemInput struct {
	ItemID   int64
	Quantity int
}

// AddItems merges the given lines into the user's cart, creating it if
// needed. Lines sharing an item id with an existing line increment its
// quantity; new ids are appended. Item data is snapshotted from the catalog,
// never taken from the client. An optional coupon code is validated against
// the merged subtotal before it is stored.
func (s *CartService) AddItems(ctx context.Context, userID string, inputs []AddItemInput, couponCode string) (*domain.Cart, error) {
	if len(inputs) == 0 {
		return nil, validationError("Missing or invalid data")
	}

	incoming := make([]domain.CartLine, 0, len(inputs))
	for _, in := range inputs {
		box, ok := catalog.ByID(in.ItemID)
		if !ok {
			return nil, validationError("Unknown item: %d", in.ItemID)
		}
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		incoming = append(incoming, box.Line(qty))
	}

	for attempt := 0; attempt < maxMergeRetries; attempt++ {
		cart, err := s.repo.GetCart(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
			return nil, err
		}

		if cart == nil {
			cart = &domain.Cart{UserID: userID}
		}
		mergeLines(cart, incoming)

		if couponCode != "" {
			c, _, errEval := coupon.Evaluate(couponCode, cartSubtotal(cart))
			if errEval != nil {
				return nil, validationError("%s", errEval.Error())
			}
			cart.AppliedCoupon = c
		}

		var errWrite error
		if cart.Version == 0 {
			errWrite = s.repo.InsertCart(ctx, cart)
		} else {
			errWrite = s.repo.ReplaceCart(ctx, cart)
		}
		if errors.Is(errWrite, repository.ErrVersionConflict) {
			continue // lost the race, re-read and re-merge
		}
		if errWrite != nil {
			return nil, errWrite
		}

		s.invalidateCache(userID)
		return cart, nil
	}

	return nil, Errorf(CodeConflict, "cart was modified concurrently, please retry")
}

func mergeLines(cart *domain.Cart, incoming []domain.CartLine) {
	for _, line := range incoming {
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ItemID == line.ItemID {
				cart.Items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, line)
		}
	}
}

func cartSubtotal(cart *domain.Cart) float64 {
	var subtotal float64
	for _, line := range cart.Items {
		subtotal += line.Price * float64(line.Quantity)
	}
	return subtotal
}

// GetCart returns the user's cart, or an empty one when none exists. Reads
// never fail on a missing cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("cart cache get failed")
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartLine{},
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				s.logger.Warn().Err(errSet).Str("user_id", userID).Msg("cart cache set failed")
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// SetQuantity makes the server authoritative for quantity adjustments.
// Quantity zero (or less) removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	err := s.repo.SetItemQuantity(ctx, userID, itemID, quantity)
	if errors.Is(err, repository.ErrItemNotFound) {
		return nil, notFoundError("Item not found in cart")
	}
	if err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return s.repo.GetCart(ctx, userID)
}

// RemoveItem pulls the line with the given item id. Removing an id that is
// not in the cart is a no-op; only a missing cart is an error.
func (s *CartService) RemoveItem(ctx context.Context, userID string, itemID int64) (*domain.Cart, error) {
	err := s.repo.RemoveItem(ctx, userID, itemID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, notFoundError("Cart not found")
	}
	if err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return s.repo.GetCart(ctx, userID)
}

// ClearCart drops the user's cart. A cart that is already gone is fine.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("cart cache invalidate failed")
	}
}
