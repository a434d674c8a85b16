package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	"github.com/colmadolabs/colmado/internal/credit/domain"
	"github.com/colmadolabs/colmado/internal/observability/metrics"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// balanceWriteAttempts bounds the version-conflict retry loop.
const balanceWriteAttempts = 3

type Params struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Metrics   *metrics.Metrics `optional:"true"`
	Repo      domain.Repository
	StoreRepo storedomain.Repository
	UserRepo  authdomain.Repository
}

type ServiceImpl struct {
	log       *zap.Logger
	genID     *snowflake.Node
	metrics   *metrics.Metrics
	repo      domain.Repository
	storeRepo storedomain.Repository
	userRepo  authdomain.Repository
}

// New constructs the credit service.
func New(p Params) domain.Service {
	return &ServiceImpl{
		log:       p.Log.Named("credit.service"),
		genID:     p.GenID,
		metrics:   p.Metrics,
		repo:      p.Repo,
		storeRepo: p.StoreRepo,
		userRepo:  p.UserRepo,
	}
}

func (s *ServiceImpl) RequestCredit(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID) (*domain.CreditRelationship, error) {
	if _, err := s.storeRepo.FindStore(ctx, storeID); err != nil {
		return nil, err
	}
	rel := &domain.CreditRelationship{
		ID:         s.genID.Generate(),
		StoreID:    storeID,
		CustomerID: identity.UserID,
	}
	if err := s.repo.Create(ctx, rel); err != nil {
		if errors.Is(err, domain.ErrRelationshipExists) {
			return s.repo.FindByStoreAndCustomer(ctx, storeID, identity.UserID)
		}
		return nil, err
	}
	s.log.Info("credit relationship requested",
		zap.String("relationship_id", rel.ID.String()),
		zap.String("store_id", storeID.String()),
		zap.String("customer_id", identity.UserID.String()),
	)
	return rel, nil
}

func (s *ServiceImpl) GetCreditInfo(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID) (*domain.CreditRelationship, error) {
	return s.repo.FindByStoreAndCustomer(ctx, storeID, identity.UserID)
}

func (s *ServiceImpl) ListHistory(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID, limit int) ([]domain.BalanceHistoryEntry, error) {
	rel, err := s.repo.FindByStoreAndCustomer(ctx, storeID, identity.UserID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, rel.ID, limit)
}

func (s *ServiceImpl) ListRelationshipHistory(ctx context.Context, identity authdomain.Identity, relationshipID snowflake.ID, limit int) ([]domain.BalanceHistoryEntry, error) {
	rel, err := s.repo.FindByID(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStoreOwner(ctx, identity, rel.StoreID); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, rel.ID, limit)
}

func (s *ServiceImpl) ListCustomers(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID) ([]domain.CustomerAccount, error) {
	if err := s.requireStoreOwner(ctx, identity, storeID); err != nil {
		return nil, err
	}
	rels, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	accounts := make([]domain.CustomerAccount, 0, len(rels))
	for _, rel := range rels {
		account := domain.CustomerAccount{
			Relationship: rel,
			CustomerID:   rel.CustomerID,
		}
		user, err := s.userRepo.FindByID(ctx, rel.CustomerID)
		if err == nil {
			account.CustomerName = user.FullName
		} else if !errors.Is(err, authdomain.ErrUserNotFound) {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *ServiceImpl) AdjustCreditLimit(ctx context.Context, identity authdomain.Identity, req domain.AdjustCreditLimitRequest) (*domain.CreditRelationship, error) {
	if req.CreditLimit < 0 {
		return nil, domain.ErrInvalidAmount
	}

	var updated *domain.CreditRelationship
	err := s.withBalanceRetry(ctx, "adjust_credit_limit", func(rel *domain.CreditRelationship) error {
		if err := s.requireStoreOwner(ctx, identity, rel.StoreID); err != nil {
			return err
		}
		if req.CreditLimit < rel.CurrentBalance {
			return domain.ErrLimitBelowBalance
		}
		// Setting a limit always approves the line.
		var casErr error
		updated, casErr = s.repo.UpdateApproval(ctx, rel.ID, rel.Version, true, req.CreditLimit)
		return casErr
	}, req.RelationshipID)
	if err != nil {
		return nil, err
	}

	s.log.Info("credit limit adjusted",
		zap.String("relationship_id", updated.ID.String()),
		zap.Bool("approved", updated.IsApproved),
		zap.Int64("credit_limit", updated.CreditLimit),
	)
	return updated, nil
}

func (s *ServiceImpl) RecordPayment(ctx context.Context, identity authdomain.Identity, req domain.RecordPaymentRequest) (*domain.CreditRelationship, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var updated *domain.CreditRelationship
	err := s.withBalanceRetry(ctx, "record_payment", func(rel *domain.CreditRelationship) error {
		if err := s.requireStoreOwner(ctx, identity, rel.StoreID); err != nil {
			return err
		}
		if req.Amount > rel.CurrentBalance {
			return domain.ErrOverpayment
		}
		var casErr error
		updated, casErr = s.repo.ConditionalUpdateBalance(ctx, rel.ID, rel.Version, rel.CurrentBalance-req.Amount)
		return casErr
	}, req.RelationshipID)
	if err != nil {
		return nil, err
	}

	entry := &domain.BalanceHistoryEntry{
		ID:             s.genID.Generate(),
		RelationshipID: updated.ID,
		Amount:         -req.Amount,
		Type:           domain.EntryPayment,
	}
	if err := s.repo.AppendHistory(ctx, entry); err != nil {
		// The balance already moved; a missing history row is an audit gap,
		// not a reason to undo the payment.
		s.log.Error("payment history append failed",
			zap.String("relationship_id", updated.ID.String()),
			zap.Int64("amount", req.Amount),
			zap.Error(err),
		)
	}

	s.metrics.RecordPayment(ctx)
	s.log.Info("payment recorded",
		zap.String("relationship_id", updated.ID.String()),
		zap.Int64("amount", req.Amount),
		zap.Int64("new_balance", updated.CurrentBalance),
	)
	return updated, nil
}

// withBalanceRetry runs fn against a fresh read of the relationship, retrying
// on version conflicts up to balanceWriteAttempts times.
func (s *ServiceImpl) withBalanceRetry(ctx context.Context, operation string, fn func(rel *domain.CreditRelationship) error, relationshipID snowflake.ID) error {
	var lastErr error
	for attempt := 1; attempt <= balanceWriteAttempts; attempt++ {
		rel, err := s.repo.FindByID(ctx, relationshipID)
		if err != nil {
			return err
		}
		err = fn(rel)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrPreconditionFailed) {
			return err
		}
		lastErr = err
		s.metrics.RecordBalanceConflict(ctx, operation)
		s.log.Warn("balance write conflict, retrying",
			zap.String("operation", operation),
			zap.String("relationship_id", relationshipID.String()),
			zap.Int("attempt", attempt),
		)
	}
	return lastErr
}

func (s *ServiceImpl) requireStoreOwner(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID) error {
	store, err := s.storeRepo.FindStore(ctx, storeID)
	if err != nil {
		return err
	}
	if store.OwnerID != identity.UserID {
		return domain.ErrRelationshipNotFound
	}
	return nil
}
