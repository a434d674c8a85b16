package domain

import "errors"

var ErrOrderNotFound = errors.New("order not found")

// Checkout failures, ordered roughly by the stage that raises them.
var (
	ErrUnauthenticated        = errors.New("caller is not authenticated")
	ErrIdentityMismatch       = errors.New("order customer does not match caller")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrRelationshipNotFound   = errors.New("no credit relationship with store")
	ErrNotApproved            = errors.New("credit relationship not approved")
	ErrLimitExceeded          = errors.New("credit limit exceeded")
	ErrConcurrentModification = errors.New("balance changed concurrently, retries exhausted")
	ErrHistoryWriteFailed     = errors.New("balance history write failed")
	ErrOrderCreationFailed    = errors.New("order creation failed")

	// ErrCompensationFailed means a balance charge could not be rolled back
	// after a downstream failure. The ledger is inconsistent until an
	// operator reconciles it.
	ErrCompensationFailed = errors.New("compensation failed, ledger requires reconciliation")
)
