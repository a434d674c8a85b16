package domain

import "errors"

var (
	ErrStoreNotFound      = errors.New("store not found")
	ErrStoreClosed        = errors.New("store is closed")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrEmptyItems         = errors.New("order has no items")
	ErrInvalidQuantity    = errors.New("invalid quantity")
)
