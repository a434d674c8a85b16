package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository is the ledger store contract. Balance writes go through
// ConditionalUpdateBalance only; history writes go through AppendHistory
// only. There is no bulk update and no history delete.
type Repository interface {
	Create(ctx context.Context, rel *CreditRelationship) error
	FindByID(ctx context.Context, id snowflake.ID) (*CreditRelationship, error)
	FindByStoreAndCustomer(ctx context.Context, storeID, customerID snowflake.ID) (*CreditRelationship, error)
	ListByStore(ctx context.Context, storeID snowflake.ID) ([]CreditRelationship, error)

	// ConditionalUpdateBalance sets the balance only when the stored version
	// still equals expectedVersion, incrementing the version on success. It
	// returns ErrPreconditionFailed when another writer got there first.
	ConditionalUpdateBalance(ctx context.Context, relationshipID snowflake.ID, expectedVersion, newBalance int64) (*CreditRelationship, error)

	// UpdateApproval sets approval state and credit limit through the same
	// version check as balance writes.
	UpdateApproval(ctx context.Context, relationshipID snowflake.ID, expectedVersion int64, approved bool, creditLimit int64) (*CreditRelationship, error)

	// AppendHistory inserts one history entry. Append-only by contract.
	AppendHistory(ctx context.Context, entry *BalanceHistoryEntry) error

	ListHistory(ctx context.Context, relationshipID snowflake.ID, limit int) ([]BalanceHistoryEntry, error)
}
