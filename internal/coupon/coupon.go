// Package coupon evaluates coupon codes against an order subtotal.
package coupon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mysteryvault/storefront/internal/domain"
)

var ErrInvalidCode = errors.New("invalid coupon code")

// MinOrderError rejects a known code whose minimum order is not met.
type MinOrderError struct {
	Code     string
	MinOrder float64
}

func (e *MinOrderError) Error() string {
	return fmt.Sprintf("Minimum order of ₹%.0f required for this coupon", e.MinOrder)
}

type rule struct {
	discountType  domain.DiscountType
	discountValue float64 // fraction for percentage, flat amount for fixed
	minOrder      float64
}

var rules = map[string]rule{
	"MYSTERY20": {domain.DiscountPercentage, 0.2, 2000},
	"FIRSTBOX":  {domain.DiscountFixed, 500, 3000},
	"SAVE100":   {domain.DiscountFixed, 100, 1000},
	"GAMING50":  {domain.DiscountFixed, 50, 1500},
	"TECH30":    {domain.DiscountPercentage, 0.3, 5000},
}

// Evaluate resolves a code against the fixed table, case-insensitively, and
// returns the coupon plus the discount amount for the given subtotal.
func Evaluate(code string, subtotal float64) (*domain.Coupon, float64, error) {
	r, ok := rules[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, 0, ErrInvalidCode
	}
	if subtotal < r.minOrder {
		return nil, 0, &MinOrderError{Code: strings.ToUpper(code), MinOrder: r.minOrder}
	}

	c := &domain.Coupon{
		Code:          strings.ToUpper(strings.TrimSpace(code)),
		DiscountValue: r.discountValue,
		DiscountType:  r.discountType,
	}
	return c, Discount(c, subtotal), nil
}

// Discount computes the discount amount a coupon yields on a subtotal.
// Fixed discounts never exceed the subtotal.
func Discount(c *domain.Coupon, subtotal float64) float64 {
	if c == nil {
		return 0
	}
	if c.DiscountType == domain.DiscountPercentage {
		return subtotal * c.DiscountValue
	}
	if c.DiscountValue > subtotal {
		return subtotal
	}
	return c.DiscountValue
}
