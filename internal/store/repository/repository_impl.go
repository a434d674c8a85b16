package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/colmadolabs/colmado/internal/store/domain"
	"gorm.io/gorm"
)

type storeRepo struct {
	db *gorm.DB
}

// ProvideRepository constructs the gorm-backed store repository.
func ProvideRepository(db *gorm.DB) domain.Repository {
	return &storeRepo{db: db}
}

func (r *storeRepo) FindStore(ctx context.Context, id snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) FindStoreByOwner(ctx context.Context, ownerID snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	err := r.db.WithContext(ctx).First(&store, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) ListStores(ctx context.Context) ([]domain.Store, error) {
	var stores []domain.Store
	if err := r.db.WithContext(ctx).Order("name asc").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *storeRepo) ListProducts(ctx context.Context, storeID snowflake.ID, inStockOnly bool) ([]domain.StoreProduct, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if inStockOnly {
		query = query.Where("in_stock = ?", true)
	}
	var products []domain.StoreProduct
	if err := query.Order("category asc, name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *storeRepo) FindProducts(ctx context.Context, storeID snowflake.ID, ids []snowflake.ID) ([]domain.StoreProduct, error) {
	var products []domain.StoreProduct
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
