package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/colmadolabs/colmado/internal/order/domain"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

// ProvideRepository constructs the gorm-backed order repository.
func ProvideRepository(db *gorm.DB) domain.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID snowflake.ID, limit int) ([]domain.Order, error) {
	return r.list(ctx, "customer_id = ?", customerID, limit)
}

func (r *orderRepo) ListByStore(ctx context.Context, storeID snowflake.ID, limit int) ([]domain.Order, error) {
	return r.list(ctx, "store_id = ?", storeID, limit)
}

func (r *orderRepo) list(ctx context.Context, cond string, id snowflake.ID, limit int) ([]domain.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where(cond, id).
		Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []domain.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.Status) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
