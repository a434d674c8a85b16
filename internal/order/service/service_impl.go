package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	creditdomain "github.com/colmadolabs/colmado/internal/credit/domain"
	"github.com/colmadolabs/colmado/internal/observability/metrics"
	"github.com/colmadolabs/colmado/internal/order/domain"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// chargeAttempts bounds the balance-conflict retry loop. Each attempt re-reads
// the relationship and re-authorizes against the fresh state.
const chargeAttempts = 3

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Metrics  *metrics.Metrics `optional:"true"`
	Repo     domain.Repository
	Ledger   creditdomain.Repository
	StoreSvc storedomain.Service
}

type ServiceImpl struct {
	log      *zap.Logger
	genID    *snowflake.Node
	metrics  *metrics.Metrics
	repo     domain.Repository
	ledger   creditdomain.Repository
	storeSvc storedomain.Service
}

// New constructs the order service.
func New(p Params) domain.Service {
	return &ServiceImpl{
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		metrics:  p.Metrics,
		repo:     p.Repo,
		ledger:   p.Ledger,
		storeSvc: p.StoreSvc,
	}
}

// ProcessOrder runs checkout as a sequence of independently committed steps.
// For fiado the balance charge commits before the history and order writes,
// so any later failure triggers a compensating balance restore.
func (s *ServiceImpl) ProcessOrder(ctx context.Context, identity authdomain.Identity, req domain.ProcessOrderRequest) (*domain.Order, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	if req.CustomerID != identity.UserID {
		s.log.Warn("checkout identity mismatch",
			zap.String("caller_id", identity.UserID.String()),
			zap.String("request_customer_id", req.CustomerID.String()),
		)
		return nil, domain.ErrIdentityMismatch
	}
	if !req.PaymentMethod.Valid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	priced, err := s.storeSvc.PriceItems(ctx, req.StoreID, req.Items)
	if err != nil {
		return nil, err
	}

	log := s.log.With(
		zap.String("store_id", req.StoreID.String()),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("payment_method", string(req.PaymentMethod)),
		zap.Int64("total", priced.Total),
	)

	if req.PaymentMethod != domain.PaymentFiado {
		order, err := s.createOrder(ctx, req, priced)
		if err != nil {
			s.metrics.RecordCheckout(ctx, string(req.PaymentMethod), "failed")
			return nil, fmt.Errorf("%w: %v", domain.ErrOrderCreationFailed, err)
		}
		s.metrics.RecordCheckout(ctx, string(req.PaymentMethod), "completed")
		log.Info("order placed", zap.String("order_id", order.ID.String()))
		return order, nil
	}

	rel, err := s.chargeCredit(ctx, req.StoreID, req.CustomerID, priced.Total, log)
	if err != nil {
		s.metrics.RecordCheckout(ctx, string(req.PaymentMethod), "denied")
		return nil, err
	}

	entry := &creditdomain.BalanceHistoryEntry{
		ID:             s.genID.Generate(),
		RelationshipID: rel.ID,
		Amount:         priced.Total,
		Type:           creditdomain.EntryCredit,
	}
	if err := s.ledger.AppendHistory(ctx, entry); err != nil {
		log.Error("history append failed, compensating", zap.Error(err))
		if compErr := s.compensate(ctx, rel.ID, priced.Total, "history_write", false, log); compErr != nil {
			return nil, compErr
		}
		s.metrics.RecordCheckout(ctx, string(req.PaymentMethod), "failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryWriteFailed, err)
	}

	order, err := s.createOrder(ctx, req, priced)
	if err != nil {
		log.Error("order creation failed, compensating", zap.Error(err))
		if compErr := s.compensate(ctx, rel.ID, priced.Total, "order_creation", true, log); compErr != nil {
			return nil, compErr
		}
		s.metrics.RecordCheckout(ctx, string(req.PaymentMethod), "failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrOrderCreationFailed, err)
	}

	s.metrics.RecordCheckout(ctx, string(req.PaymentMethod), "completed")
	log.Info("fiado order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("relationship_id", rel.ID.String()),
	)
	return order, nil
}

// chargeCredit authorizes and applies the charge under optimistic
// concurrency. Authorization is re-evaluated on every attempt because a
// conflicting writer may have consumed the remaining headroom.
func (s *ServiceImpl) chargeCredit(ctx context.Context, storeID, customerID snowflake.ID, amount int64, log *zap.Logger) (*creditdomain.CreditRelationship, error) {
	for attempt := 1; attempt <= chargeAttempts; attempt++ {
		rel, err := s.ledger.FindByStoreAndCustomer(ctx, storeID, customerID)
		if err != nil {
			if errors.Is(err, creditdomain.ErrRelationshipNotFound) {
				return nil, domain.ErrRelationshipNotFound
			}
			return nil, err
		}

		decision := creditdomain.Authorize(*rel, amount)
		if !decision.Approved {
			log.Info("credit authorization denied",
				zap.String("relationship_id", rel.ID.String()),
				zap.String("reason", string(decision.Reason)),
				zap.Int64("balance", decision.Balance),
				zap.Int64("limit", decision.Limit),
			)
			switch decision.Reason {
			case creditdomain.DenialNotApproved:
				return nil, domain.ErrNotApproved
			default:
				return nil, domain.ErrLimitExceeded
			}
		}

		updated, err := s.ledger.ConditionalUpdateBalance(ctx, rel.ID, rel.Version, rel.CurrentBalance+amount)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, creditdomain.ErrPreconditionFailed) {
			return nil, err
		}
		s.metrics.RecordBalanceConflict(ctx, "charge")
		log.Warn("balance charge conflict, retrying",
			zap.String("relationship_id", rel.ID.String()),
			zap.Int("attempt", attempt),
		)
	}
	return nil, domain.ErrConcurrentModification
}

// compensate restores the balance after a failed downstream step. When
// reverseEntry is set, a debit entry records the reversal so history stays
// append-only. A failed compensation is fatal: the charge is stranded on the
// ledger.
func (s *ServiceImpl) compensate(ctx context.Context, relationshipID snowflake.ID, amount int64, stage string, reverseEntry bool, log *zap.Logger) error {
	s.metrics.RecordCompensation(ctx, stage)

	var restored *creditdomain.CreditRelationship
	for attempt := 1; attempt <= chargeAttempts; attempt++ {
		rel, err := s.ledger.FindByID(ctx, relationshipID)
		if err != nil {
			return s.compensationFailed(ctx, relationshipID, amount, stage, err, log)
		}
		restored, err = s.ledger.ConditionalUpdateBalance(ctx, rel.ID, rel.Version, rel.CurrentBalance-amount)
		if err == nil {
			break
		}
		if !errors.Is(err, creditdomain.ErrPreconditionFailed) {
			return s.compensationFailed(ctx, relationshipID, amount, stage, err, log)
		}
		s.metrics.RecordBalanceConflict(ctx, "compensation")
		if attempt == chargeAttempts {
			return s.compensationFailed(ctx, relationshipID, amount, stage, err, log)
		}
	}

	if reverseEntry {
		entry := &creditdomain.BalanceHistoryEntry{
			ID:             s.genID.Generate(),
			RelationshipID: relationshipID,
			Amount:         -amount,
			Type:           creditdomain.EntryDebit,
		}
		if err := s.ledger.AppendHistory(ctx, entry); err != nil {
			// Balance is already restored; the missing reversal entry is an
			// audit gap, not a stranded charge.
			log.Error("compensation reversal entry failed",
				zap.String("relationship_id", relationshipID.String()),
				zap.Int64("amount", amount),
				zap.Error(err),
			)
		}
	}

	log.Info("balance charge compensated",
		zap.String("relationship_id", relationshipID.String()),
		zap.String("stage", stage),
		zap.Int64("amount", amount),
		zap.Int64("restored_balance", restored.CurrentBalance),
	)
	return nil
}

func (s *ServiceImpl) compensationFailed(ctx context.Context, relationshipID snowflake.ID, amount int64, stage string, cause error, log *zap.Logger) error {
	s.metrics.RecordCompensationFailure(ctx, stage)
	log.Error("compensation failed, ledger requires reconciliation",
		zap.String("relationship_id", relationshipID.String()),
		zap.String("stage", stage),
		zap.Int64("stranded_amount", amount),
		zap.Error(cause),
	)
	return fmt.Errorf("%w: %v", domain.ErrCompensationFailed, cause)
}

func (s *ServiceImpl) createOrder(ctx context.Context, req domain.ProcessOrderRequest, priced *storedomain.PricedOrder) (*domain.Order, error) {
	order := &domain.Order{
		ID:            s.genID.Generate(),
		StoreID:       req.StoreID,
		CustomerID:    req.CustomerID,
		Status:        domain.StatusPending,
		PaymentMethod: req.PaymentMethod,
		Total:         priced.Total,
	}
	for _, item := range priced.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:             s.genID.Generate(),
			OrderID:        order.ID,
			StoreProductID: item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
		})
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *ServiceImpl) GetOrder(ctx context.Context, identity authdomain.Identity, id snowflake.ID) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != identity.UserID {
		store, storeErr := s.storeSvc.GetStore(ctx, order.StoreID)
		if storeErr != nil || store.OwnerID != identity.UserID {
			return nil, domain.ErrOrderNotFound
		}
	}
	return order, nil
}

func (s *ServiceImpl) ListOrders(ctx context.Context, identity authdomain.Identity, limit int) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, identity.UserID, limit)
}

func (s *ServiceImpl) ListStoreOrders(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID, limit int) ([]domain.Order, error) {
	store, err := s.storeSvc.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID != identity.UserID {
		return nil, storedomain.ErrStoreNotFound
	}
	return s.repo.ListByStore(ctx, storeID, limit)
}
