package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/colmadolabs/colmado/internal/store/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStoreRepo struct {
	stores   map[snowflake.ID]*domain.Store
	products map[snowflake.ID]domain.StoreProduct
}

func (f *fakeStoreRepo) FindStore(ctx context.Context, id snowflake.ID) (*domain.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

func (f *fakeStoreRepo) FindStoreByOwner(ctx context.Context, ownerID snowflake.ID) (*domain.Store, error) {
	for _, store := range f.stores {
		if store.OwnerID == ownerID {
			return store, nil
		}
	}
	return nil, domain.ErrStoreNotFound
}

func (f *fakeStoreRepo) ListStores(ctx context.Context) ([]domain.Store, error) {
	return nil, nil
}

func (f *fakeStoreRepo) ListProducts(ctx context.Context, storeID snowflake.ID, inStockOnly bool) ([]domain.StoreProduct, error) {
	return nil, nil
}

func (f *fakeStoreRepo) FindProducts(ctx context.Context, storeID snowflake.ID, ids []snowflake.ID) ([]domain.StoreProduct, error) {
	var products []domain.StoreProduct
	for _, id := range ids {
		product, ok := f.products[id]
		if ok && product.StoreID == storeID {
			products = append(products, product)
		}
	}
	return products, nil
}

type pricingFixture struct {
	svc     domain.Service
	node    *snowflake.Node
	storeID snowflake.ID
	arroz   domain.StoreProduct
	salami  domain.StoreProduct
	malta   domain.StoreProduct
}

func newPricingFixture(t *testing.T) *pricingFixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	storeID := node.Generate()
	repo := &fakeStoreRepo{
		stores: map[snowflake.ID]*domain.Store{
			storeID: {ID: storeID, OwnerID: node.Generate(), Name: "Colmado Test", IsOpen: true},
		},
		products: map[snowflake.ID]domain.StoreProduct{},
	}

	arroz := domain.StoreProduct{ID: node.Generate(), StoreID: storeID, Name: "Arroz", Price: 85_00, InStock: true}
	salami := domain.StoreProduct{ID: node.Generate(), StoreID: storeID, Name: "Salami", Price: 180_00, InStock: true}
	malta := domain.StoreProduct{ID: node.Generate(), StoreID: storeID, Name: "Malta", Price: 60_00, InStock: false}
	for _, p := range []domain.StoreProduct{arroz, salami, malta} {
		repo.products[p.ID] = p
	}

	return &pricingFixture{
		svc:     New(Params{Log: zap.NewNop(), Repo: repo}),
		node:    node,
		storeID: storeID,
		arroz:   arroz,
		salami:  salami,
		malta:   malta,
	}
}

func TestPriceItemsComputesTotalFromCatalog(t *testing.T) {
	fx := newPricingFixture(t)

	priced, err := fx.svc.PriceItems(context.Background(), fx.storeID, []domain.ItemSelection{
		{ProductID: fx.arroz.ID, Quantity: 3},
		{ProductID: fx.salami.ID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3*85_00+2*180_00), priced.Total)
	require.Len(t, priced.Items, 2)
	assert.Equal(t, int64(85_00), priced.Items[0].UnitPrice)
	assert.Equal(t, int64(3*85_00), priced.Items[0].LineTotal())
}

func TestPriceItemsRejectsUnknownProduct(t *testing.T) {
	fx := newPricingFixture(t)

	_, err := fx.svc.PriceItems(context.Background(), fx.storeID, []domain.ItemSelection{
		{ProductID: fx.node.Generate(), Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPriceItemsRejectsOutOfStock(t *testing.T) {
	fx := newPricingFixture(t)

	_, err := fx.svc.PriceItems(context.Background(), fx.storeID, []domain.ItemSelection{
		{ProductID: fx.malta.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrProductUnavailable)
}

func TestPriceItemsRejectsBadQuantity(t *testing.T) {
	fx := newPricingFixture(t)

	_, err := fx.svc.PriceItems(context.Background(), fx.storeID, []domain.ItemSelection{
		{ProductID: fx.arroz.ID, Quantity: 0},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = fx.svc.PriceItems(context.Background(), fx.storeID, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestPriceItemsRejectsUnknownStore(t *testing.T) {
	fx := newPricingFixture(t)

	_, err := fx.svc.PriceItems(context.Background(), fx.node.Generate(), []domain.ItemSelection{
		{ProductID: fx.arroz.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}
