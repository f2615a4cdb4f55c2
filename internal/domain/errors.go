package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller does not own the entity and is not an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation wraps malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyPaid indicates a payment operation on an order that is already paid.
	ErrAlreadyPaid = errors.New("order is already paid")
	// ErrNotPaid indicates a refund attempt on an order that is not paid.
	ErrNotPaid = errors.New("order is not paid")
	// ErrRefunded indicates a payment attempt on an order that was refunded.
	ErrRefunded = errors.New("order payment was refunded")
	// ErrNotCancellable indicates the order status does not permit cancellation.
	ErrNotCancellable = errors.New("order cannot be cancelled")
	// ErrCategoryInUse blocks deletion of a category still referenced by products.
	ErrCategoryInUse = errors.New("category still has products")
	// ErrGateway indicates the payment processor call failed or returned an
	// unexpected response.
	ErrGateway = errors.New("payment gateway error")
)
