package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository defines store catalog persistence.
type Repository interface {
	FindStore(ctx context.Context, id snowflake.ID) (*Store, error)
	FindStoreByOwner(ctx context.Context, ownerID snowflake.ID) (*Store, error)
	ListStores(ctx context.Context) ([]Store, error)
	ListProducts(ctx context.Context, storeID snowflake.ID, inStockOnly bool) ([]StoreProduct, error)
	FindProducts(ctx context.Context, storeID snowflake.ID, ids []snowflake.ID) ([]StoreProduct, error)
}
