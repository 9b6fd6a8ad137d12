package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyPaid is returned by MarkPaid when the order was paid before.
	ErrAlreadyPaid = errors.New("order is already paid")
	// ErrAlreadyDelivered is returned by MarkDelivered when the order was delivered before.
	ErrAlreadyDelivered = errors.New("order is already delivered")
	// ErrNotPaid is returned by MarkDelivered for an unpaid order.
	ErrNotPaid = errors.New("order is not paid")
	// ErrMergeConflict means the session cart changed owner before the merge could lock it.
	ErrMergeConflict = errors.New("cart is no longer owned by the session")
	// ErrEmptyCart is returned when an order is placed from a cart without items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartChanged is returned when the cart no longer matches the order built from it.
	ErrCartChanged = errors.New("cart changed while placing the order")
)
