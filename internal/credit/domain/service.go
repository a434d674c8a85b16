package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
)

// CustomerAccount pairs a relationship with the customer it belongs to, for
// the owner's customer list.
type CustomerAccount struct {
	Relationship CreditRelationship `json:"relationship"`
	CustomerName string             `json:"customer_name"`
	CustomerID   snowflake.ID       `json:"customer_id"`
}

// AdjustCreditLimitRequest sets the limit on a relationship. Adjusting a
// limit always approves the line; there is no way to revoke approval through
// this operation.
type AdjustCreditLimitRequest struct {
	RelationshipID snowflake.ID `json:"relationship_id"`
	CreditLimit    int64        `json:"credit_limit"`
}

// RecordPaymentRequest records a customer paying down their balance.
type RecordPaymentRequest struct {
	RelationshipID snowflake.ID `json:"relationship_id"`
	Amount         int64        `json:"amount"`
}

// Service exposes credit line management for store owners and credit info
// reads for customers. Checkout-time balance changes are not here; they
// belong to the order coordinator.
type Service interface {
	// RequestCredit creates an unapproved zero-limit relationship between
	// the customer and the store.
	RequestCredit(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID) (*CreditRelationship, error)

	// GetCreditInfo returns the caller's credit line at the store.
	GetCreditInfo(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID) (*CreditRelationship, error)

	ListHistory(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID, limit int) ([]BalanceHistoryEntry, error)

	// ListRelationshipHistory returns the history of one credit line at the
	// owner's store.
	ListRelationshipHistory(ctx context.Context, identity authdomain.Identity, relationshipID snowflake.ID, limit int) ([]BalanceHistoryEntry, error)

	// ListCustomers returns every credit line at the owner's store.
	ListCustomers(ctx context.Context, identity authdomain.Identity, storeID snowflake.ID) ([]CustomerAccount, error)

	// AdjustCreditLimit sets the limit on a credit line and approves it. The
	// limit may not drop below the outstanding balance.
	AdjustCreditLimit(ctx context.Context, identity authdomain.Identity, req AdjustCreditLimitRequest) (*CreditRelationship, error)

	// RecordPayment lowers the balance and appends a payment entry.
	RecordPayment(ctx context.Context, identity authdomain.Identity, req RecordPaymentRequest) (*CreditRelationship, error)
}
