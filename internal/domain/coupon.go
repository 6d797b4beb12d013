package domain

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is the applied-coupon reference stored on carts and orders.
type Coupon struct {
	Code          string       `bson:"code" json:"code"`
	DiscountValue float64      `bson:"discount_value" json:"discountValue"`
	DiscountType  DiscountType `bson:"discount_type" json:"discountType"`
}
