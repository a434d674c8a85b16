package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/colmadolabs/colmado/internal/credit/domain"
	"github.com/colmadolabs/colmado/pkg/db"
	"gorm.io/gorm"
)

type creditRepo struct {
	db *gorm.DB
}

// ProvideRepository constructs the gorm-backed ledger store.
func ProvideRepository(conn *gorm.DB) domain.Repository {
	return &creditRepo{db: conn}
}

func (r *creditRepo) Create(ctx context.Context, rel *domain.CreditRelationship) error {
	err := r.db.WithContext(ctx).Create(rel).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrRelationshipExists
	}
	return err
}

func (r *creditRepo) FindByID(ctx context.Context, id snowflake.ID) (*domain.CreditRelationship, error) {
	var rel domain.CreditRelationship
	err := r.db.WithContext(ctx).First(&rel, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRelationshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *creditRepo) FindByStoreAndCustomer(ctx context.Context, storeID, customerID snowflake.ID) (*domain.CreditRelationship, error) {
	var rel domain.CreditRelationship
	err := r.db.WithContext(ctx).
		First(&rel, "store_id = ? AND customer_id = ?", storeID, customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRelationshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *creditRepo) ListByStore(ctx context.Context, storeID snowflake.ID) ([]domain.CreditRelationship, error) {
	var rels []domain.CreditRelationship
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at asc").
		Find(&rels).Error
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// ConditionalUpdateBalance is the single write path for balances. The WHERE
// clause carries the version check, so a lost race surfaces as zero rows
// affected rather than a silent overwrite.
func (r *creditRepo) ConditionalUpdateBalance(ctx context.Context, relationshipID snowflake.ID, expectedVersion, newBalance int64) (*domain.CreditRelationship, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.CreditRelationship{}).
		Where("id = ? AND version = ?", relationshipID, expectedVersion).
		Updates(map[string]any{
			"current_balance": newBalance,
			"version":         gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, relationshipID); err != nil {
			return nil, err
		}
		return nil, domain.ErrPreconditionFailed
	}
	return r.FindByID(ctx, relationshipID)
}

func (r *creditRepo) UpdateApproval(ctx context.Context, relationshipID snowflake.ID, expectedVersion int64, approved bool, creditLimit int64) (*domain.CreditRelationship, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.CreditRelationship{}).
		Where("id = ? AND version = ?", relationshipID, expectedVersion).
		Updates(map[string]any{
			"is_approved":  approved,
			"credit_limit": creditLimit,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, relationshipID); err != nil {
			return nil, err
		}
		return nil, domain.ErrPreconditionFailed
	}
	return r.FindByID(ctx, relationshipID)
}

func (r *creditRepo) AppendHistory(ctx context.Context, entry *domain.BalanceHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *creditRepo) ListHistory(ctx context.Context, relationshipID snowflake.ID, limit int) ([]domain.BalanceHistoryEntry, error) {
	query := r.db.WithContext(ctx).
		Where("relationship_id = ?", relationshipID).
		Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []domain.BalanceHistoryEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
