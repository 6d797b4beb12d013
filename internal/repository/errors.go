package repository

import "errors"

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	// ErrVersionConflict means a conditional cart write lost a race and
	// should be retried from a fresh read.
	ErrVersionConflict = errors.New("cart version conflict")
	// ErrStatusConflict means a conditional order-status write found the
	// order in a different status than expected.
	ErrStatusConflict = errors.New("order status conflict")
)
