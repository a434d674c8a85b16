package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	creditdomain "github.com/colmadolabs/colmado/internal/credit/domain"
	"github.com/colmadolabs/colmado/internal/order/domain"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLedger keeps relationships in memory with real conditional-update
// semantics. The mutex makes version checks linearizable, so concurrent
// checkout tests behave like a real database under contention.
type fakeLedger struct {
	mu      sync.Mutex
	rels    map[snowflake.ID]*creditdomain.CreditRelationship
	history []creditdomain.BalanceHistoryEntry

	historyErr error
	casErr     error
	casErrArm  bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rels: make(map[snowflake.ID]*creditdomain.CreditRelationship)}
}

func (f *fakeLedger) put(rel creditdomain.CreditRelationship) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := rel
	f.rels[rel.ID] = &copied
}

func (f *fakeLedger) balance(id snowflake.ID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rels[id].CurrentBalance
}

func (f *fakeLedger) Create(ctx context.Context, rel *creditdomain.CreditRelationship) error {
	f.put(*rel)
	return nil
}

func (f *fakeLedger) FindByID(ctx context.Context, id snowflake.ID) (*creditdomain.CreditRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rel, ok := f.rels[id]
	if !ok {
		return nil, creditdomain.ErrRelationshipNotFound
	}
	copied := *rel
	return &copied, nil
}

func (f *fakeLedger) FindByStoreAndCustomer(ctx context.Context, storeID, customerID snowflake.ID) (*creditdomain.CreditRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rel := range f.rels {
		if rel.StoreID == storeID && rel.CustomerID == customerID {
			copied := *rel
			return &copied, nil
		}
	}
	return nil, creditdomain.ErrRelationshipNotFound
}

func (f *fakeLedger) ListByStore(ctx context.Context, storeID snowflake.ID) ([]creditdomain.CreditRelationship, error) {
	return nil, nil
}

func (f *fakeLedger) ConditionalUpdateBalance(ctx context.Context, relationshipID snowflake.ID, expectedVersion, newBalance int64) (*creditdomain.CreditRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.casErrArm {
		return nil, f.casErr
	}
	rel, ok := f.rels[relationshipID]
	if !ok {
		return nil, creditdomain.ErrRelationshipNotFound
	}
	if rel.Version != expectedVersion {
		return nil, creditdomain.ErrPreconditionFailed
	}
	rel.CurrentBalance = newBalance
	rel.Version++
	copied := *rel
	return &copied, nil
}

func (f *fakeLedger) UpdateApproval(ctx context.Context, relationshipID snowflake.ID, expectedVersion int64, approved bool, creditLimit int64) (*creditdomain.CreditRelationship, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLedger) AppendHistory(ctx context.Context, entry *creditdomain.BalanceHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return f.historyErr
	}
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeLedger) ListHistory(ctx context.Context, relationshipID snowflake.ID, limit int) ([]creditdomain.BalanceHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []creditdomain.BalanceHistoryEntry
	for _, entry := range f.history {
		if entry.RelationshipID == relationshipID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// fakeStoreService prices every request at a fixed total.
type fakeStoreService struct {
	storeID snowflake.ID
	total   int64
}

func (f *fakeStoreService) GetStore(ctx context.Context, id snowflake.ID) (*storedomain.Store, error) {
	return nil, storedomain.ErrStoreNotFound
}

func (f *fakeStoreService) GetStoreByOwner(ctx context.Context, ownerID snowflake.ID) (*storedomain.Store, error) {
	return nil, storedomain.ErrStoreNotFound
}

func (f *fakeStoreService) ListStores(ctx context.Context) ([]storedomain.Store, error) {
	return nil, nil
}

func (f *fakeStoreService) ListProducts(ctx context.Context, storeID snowflake.ID, inStockOnly bool) ([]storedomain.StoreProduct, error) {
	return nil, nil
}

func (f *fakeStoreService) PriceItems(ctx context.Context, storeID snowflake.ID, items []storedomain.ItemSelection) (*storedomain.PricedOrder, error) {
	return &storedomain.PricedOrder{
		StoreID: storeID,
		Items: []storedomain.PricedItem{
			{ProductID: items[0].ProductID, Quantity: 1, UnitPrice: f.total},
		},
		Total: f.total,
	}, nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    []domain.Order
	createErr error
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderRepo) ListByCustomer(ctx context.Context, customerID snowflake.ID, limit int) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListByStore(ctx context.Context, storeID snowflake.ID, limit int) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.Status) error {
	return nil
}

type checkoutFixture struct {
	svc      domain.Service
	ledger   *fakeLedger
	orders   *fakeOrderRepo
	node     *snowflake.Node
	identity authdomain.Identity
	rel      creditdomain.CreditRelationship
	storeID  snowflake.ID
}

func newCheckoutFixture(t *testing.T, total int64, rel creditdomain.CreditRelationship) *checkoutFixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	storeID := node.Generate()
	customerID := node.Generate()

	rel.ID = node.Generate()
	rel.StoreID = storeID
	rel.CustomerID = customerID

	ledger := newFakeLedger()
	ledger.put(rel)

	orders := &fakeOrderRepo{}

	svc := New(Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     orders,
		Ledger:   ledger,
		StoreSvc: &fakeStoreService{storeID: storeID, total: total},
	})

	return &checkoutFixture{
		svc:      svc,
		ledger:   ledger,
		orders:   orders,
		node:     node,
		identity: authdomain.Identity{UserID: customerID, Role: authdomain.RoleCustomer},
		rel:      rel,
		storeID:  storeID,
	}
}

func (f *checkoutFixture) request(total int64) domain.ProcessOrderRequest {
	return domain.ProcessOrderRequest{
		CustomerID:    f.identity.UserID,
		StoreID:       f.storeID,
		PaymentMethod: domain.PaymentFiado,
		Items:         []storedomain.ItemSelection{{ProductID: f.node.Generate(), Quantity: 1}},
	}
}

func TestProcessOrderFiadoSuccess(t *testing.T) {
	fx := newCheckoutFixture(t, 100_00, creditdomain.CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	})

	order, err := fx.svc.ProcessOrder(context.Background(), fx.identity, fx.request(100_00))
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, domain.PaymentFiado, order.PaymentMethod)
	assert.Equal(t, int64(100_00), order.Total)
	assert.Equal(t, int64(1550_00), fx.ledger.balance(fx.rel.ID))

	require.Len(t, fx.ledger.history, 1)
	assert.Equal(t, creditdomain.EntryCredit, fx.ledger.history[0].Type)
	assert.Equal(t, int64(100_00), fx.ledger.history[0].Amount)

	require.Len(t, fx.orders.orders, 1)
	assert.Equal(t, order.ID, fx.orders.orders[0].ID)
}

func TestProcessOrderLimitExceeded(t *testing.T) {
	fx := newCheckoutFixture(t, 10000_00, creditdomain.CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	})

	_, err := fx.svc.ProcessOrder(context.Background(), fx.identity, fx.request(10000_00))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	assert.Equal(t, int64(1450_00), fx.ledger.balance(fx.rel.ID))
	assert.Empty(t, fx.ledger.history)
	assert.Empty(t, fx.orders.orders)
}

func TestProcessOrderNotApproved(t *testing.T) {
	fx := newCheckoutFixture(t, 1_00, creditdomain.CreditRelationship{
		IsApproved:     false,
		CreditLimit:    5000_00,
		CurrentBalance: 0,
	})

	_, err := fx.svc.ProcessOrder(context.Background(), fx.identity, fx.request(1_00))
	assert.ErrorIs(t, err, domain.ErrNotApproved)

	assert.Equal(t, int64(0), fx.ledger.balance(fx.rel.ID))
	assert.Empty(t, fx.ledger.history)
}

func TestProcessOrderHistoryFailureCompensates(t *testing.T) {
	fx := newCheckoutFixture(t, 100_00, creditdomain.CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	})
	fx.ledger.historyErr = errors.New("disk full")

	_, err := fx.svc.ProcessOrder(context.Background(), fx.identity, fx.request(100_00))
	assert.ErrorIs(t, err, domain.ErrHistoryWriteFailed)

	// Compensation restored the pre-transaction balance and no order exists.
	assert.Equal(t, int64(1450_00), fx.ledger.balance(fx.rel.ID))
	assert.Empty(t, fx.orders.orders)
}

func TestProcessOrderCreationFailureCompensatesWithReversal(t *testing.T) {
	fx := newCheckoutFixture(t, 100_00, creditdomain.CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	})
	fx.orders.createErr = errors.New("constraint violation")

	_, err := fx.svc.ProcessOrder(context.Background(), fx.identity, fx.request(100_00))
	assert.ErrorIs(t, err, domain.ErrOrderCreationFailed)

	assert.Equal(t, int64(1450_00), fx.ledger.balance(fx.rel.ID))

	// History keeps both the charge and its reversing debit.
	require.Len(t, fx.ledger.history, 2)
	assert.Equal(t, creditdomain.EntryCredit, fx.ledger.history[0].Type)
	assert.Equal(t, int64(100_00), fx.ledger.history[0].Amount)
	assert.Equal(t, creditdomain.EntryDebit, fx.ledger.history[1].Type)
	assert.Equal(t, int64(-100_00), fx.ledger.history[1].Amount)
}

func TestProcessOrderCompensationFailureIsFatal(t *testing.T) {
	fx := newCheckoutFixture(t, 100_00, creditdomain.CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	})
	fx.ledger.historyErr = errors.New("disk full")

	// Charge succeeds, then every later balance write breaks.
	fx.ledger.casErr = errors.New("connection reset")
	fx.ledger.casErrArm = false

	svcImpl := fx.svc.(*ServiceImpl)
	rel, err := svcImpl.chargeCredit(context.Background(), fx.storeID, fx.identity.UserID, 100_00, zap.NewNop())
	require.NoError(t, err)
	fx.ledger.casErrArm = true

	compErr := svcImpl.compensate(context.Background(), rel.ID, 100_00, "history_write", false, zap.NewNop())
	assert.ErrorIs(t, compErr, domain.ErrCompensationFailed)
}

func TestProcessOrderIdentityChecks(t *testing.T) {
	fx := newCheckoutFixture(t, 100_00, creditdomain.CreditRelationship{
		IsApproved:  true,
		CreditLimit: 5000_00,
	})

	_, err := fx.svc.ProcessOrder(context.Background(), authdomain.Identity{}, fx.request(100_00))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	other := authdomain.Identity{UserID: fx.node.Generate(), Role: authdomain.RoleCustomer}
	_, err = fx.svc.ProcessOrder(context.Background(), other, fx.request(100_00))
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
}

func TestProcessOrderCashSkipsLedger(t *testing.T) {
	fx := newCheckoutFixture(t, 100_00, creditdomain.CreditRelationship{
		IsApproved:     false,
		CreditLimit:    0,
		CurrentBalance: 0,
	})

	req := fx.request(100_00)
	req.PaymentMethod = domain.PaymentCash

	order, err := fx.svc.ProcessOrder(context.Background(), fx.identity, req)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCash, order.PaymentMethod)

	assert.Equal(t, int64(0), fx.ledger.balance(fx.rel.ID))
	assert.Empty(t, fx.ledger.history)
}

func TestProcessOrderMissingRelationship(t *testing.T) {
	fx := newCheckoutFixture(t, 100_00, creditdomain.CreditRelationship{
		IsApproved: true,
	})

	req := fx.request(100_00)
	req.CustomerID = fx.node.Generate()
	other := authdomain.Identity{UserID: req.CustomerID, Role: authdomain.RoleCustomer}

	_, err := fx.svc.ProcessOrder(context.Background(), other, req)
	assert.ErrorIs(t, err, domain.ErrRelationshipNotFound)
}

func TestProcessOrderConcurrentChargesNeverExceedLimit(t *testing.T) {
	fx := newCheckoutFixture(t, 2000_00, creditdomain.CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	})

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, err := fx.svc.ProcessOrder(context.Background(), fx.identity, fx.request(2000_00))
			results[slot] = err
		}(i)
	}
	wg.Wait()

	var successes, failures int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		failures++
		assert.True(t,
			errors.Is(err, domain.ErrLimitExceeded) || errors.Is(err, domain.ErrConcurrentModification),
			"unexpected failure: %v", err)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	assert.Equal(t, int64(3450_00), fx.ledger.balance(fx.rel.ID))
	assert.LessOrEqual(t, fx.ledger.balance(fx.rel.ID), int64(5000_00))
	assert.Len(t, fx.orders.orders, 1)
}
