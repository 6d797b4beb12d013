package domain

import "time"

type Cart struct {
	ID            string     `bson:"_id,omitempty" json:"-"`
	UserID        string     `bson:"user_id" json:"userId"`
	Items         []CartLine `bson:"items" json:"items"`
	AppliedCoupon *Coupon    `bson:"applied_coupon,omitempty" json:"appliedCoupon,omitempty"`
	Version       int64      `bson:"version" json:"-"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updatedAt"`
}

// CartLine is one catalog item plus a quantity. The catalog fields are
// snapshotted at add time so the cart renders without a catalog lookup.
type CartLine struct {
	ItemID        int64   `bson:"item_id" json:"id"`
	Name          string  `bson:"name" json:"name"`
	Description   string  `bson:"description" json:"description"`
	Image         string  `bson:"image" json:"image"`
	ItemCount     string  `bson:"item_count" json:"items"`
	Price         float64 `bson:"price" json:"price"`
	OriginalValue float64 `bson:"original_value" json:"originalValue"`
	Quantity      int     `bson:"quantity" json:"quantity"`
}
