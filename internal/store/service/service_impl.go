package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colmadolabs/colmado/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type ServiceImpl struct {
	log  *zap.Logger
	repo domain.Repository
}

// New constructs the store catalog service.
func New(p Params) domain.Service {
	return &ServiceImpl{
		log:  p.Log.Named("store.service"),
		repo: p.Repo,
	}
}

func (s *ServiceImpl) GetStore(ctx context.Context, id snowflake.ID) (*domain.Store, error) {
	return s.repo.FindStore(ctx, id)
}

func (s *ServiceImpl) GetStoreByOwner(ctx context.Context, ownerID snowflake.ID) (*domain.Store, error) {
	return s.repo.FindStoreByOwner(ctx, ownerID)
}

func (s *ServiceImpl) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.repo.ListStores(ctx)
}

func (s *ServiceImpl) ListProducts(ctx context.Context, storeID snowflake.ID, inStockOnly bool) ([]domain.StoreProduct, error) {
	if _, err := s.repo.FindStore(ctx, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListProducts(ctx, storeID, inStockOnly)
}

// PriceItems resolves each selection against the catalog and recomputes the
// total. Client-submitted prices never enter this path.
func (s *ServiceImpl) PriceItems(ctx context.Context, storeID snowflake.ID, items []domain.ItemSelection) (*domain.PricedOrder, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		ids = append(ids, item.ProductID)
	}

	store, err := s.repo.FindStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.IsOpen {
		return nil, domain.ErrStoreClosed
	}

	products, err := s.repo.FindProducts(ctx, storeID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]domain.StoreProduct, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	priced := &domain.PricedOrder{StoreID: storeID}
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		if !product.InStock {
			s.log.Info("rejecting out-of-stock product",
				zap.String("store_id", storeID.String()),
				zap.String("product_id", product.ID.String()),
			)
			return nil, domain.ErrProductUnavailable
		}
		line := domain.PricedItem{
			ProductID: product.ID,
			Name:      product.DisplayName(),
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		}
		priced.Items = append(priced.Items, line)
		priced.Total += line.LineTotal()
	}
	return priced, nil
}
