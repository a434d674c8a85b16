package domain

import "errors"

var (
	ErrRelationshipNotFound = errors.New("credit relationship not found")
	ErrRelationshipExists   = errors.New("credit relationship already exists")
	ErrPreconditionFailed   = errors.New("balance version precondition failed")
	ErrNotApproved          = errors.New("credit relationship not approved")
	ErrLimitExceeded        = errors.New("credit limit exceeded")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrLimitBelowBalance    = errors.New("credit limit below outstanding balance")
	ErrOverpayment          = errors.New("payment exceeds outstanding balance")
)
