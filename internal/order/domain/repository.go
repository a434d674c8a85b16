package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository defines order persistence.
type Repository interface {
	// Create inserts the order and its items.
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id snowflake.ID) (*Order, error)
	ListByCustomer(ctx context.Context, customerID snowflake.ID, limit int) ([]Order, error)
	ListByStore(ctx context.Context, storeID snowflake.ID, limit int) ([]Order, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status) error
}
