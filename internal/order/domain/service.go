package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
)

// Service coordinates checkout and exposes order reads.
type Service interface {
	// ProcessOrder runs the checkout flow: authenticate, reprice, authorize
	// credit, apply the balance, append history, create the order. Fiado
	// failures after the balance charge are compensated.
	ProcessOrder(ctx context.Context, identity authdomain.Identity, req ProcessOrderRequest) (*Order, error)

	GetOrder(ctx context.Context, identity authdomain.Identity, id snowflake.ID) (*Order, error)
	ListOrders(ctx context.Context, identity authdomain.Identity, limit int) ([]Order, error)
	ListStoreOrders(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID, limit int) ([]Order, error)
}
