package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ItemSelection is a client-submitted order line. Only the product reference
// and quantity are taken from the client.
type ItemSelection struct {
	ProductID snowflake.ID `json:"product_id"`
	Quantity  int64        `json:"quantity"`
}

// PricedItem is an order line with the unit price resolved from the catalog.
type PricedItem struct {
	ProductID snowflake.ID
	Name      string
	Quantity  int64
	UnitPrice int64
}

func (i PricedItem) LineTotal() int64 {
	return i.UnitPrice * i.Quantity
}

// PricedOrder is the server-side repricing of a client item selection.
type PricedOrder struct {
	StoreID snowflake.ID
	Items   []PricedItem
	Total   int64
}

// Service exposes catalog reads and authoritative pricing.
type Service interface {
	GetStore(ctx context.Context, id snowflake.ID) (*Store, error)
	GetStoreByOwner(ctx context.Context, ownerID snowflake.ID) (*Store, error)
	ListStores(ctx context.Context) ([]Store, error)
	ListProducts(ctx context.Context, storeID snowflake.ID, inStockOnly bool) ([]StoreProduct, error)

	// PriceItems recomputes the order total from catalog prices. It fails if
	// any referenced product is missing, out of stock, or from another store.
	PriceItems(ctx context.Context, storeID snowflake.ID, items []ItemSelection) (*PricedOrder, error)
}
