// Package domain contains the credit ledger core: the relationship record,
// its append-only history, and the pure authorization decision.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CreditRelationship is one store-customer credit line. CurrentBalance is the
// outstanding debt in minor units and only moves through version-checked
// updates; Version increments on every balance write.
type CreditRelationship struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID        snowflake.ID `gorm:"column:store_id;not null;uniqueIndex:idx_credit_store_customer" json:"store_id"`
	CustomerID     snowflake.ID `gorm:"column:customer_id;not null;uniqueIndex:idx_credit_store_customer" json:"customer_id"`
	IsApproved     bool         `gorm:"column:is_approved;not null;default:false" json:"is_approved"`
	CreditLimit    int64        `gorm:"column:credit_limit;not null;default:0" json:"credit_limit"`
	CurrentBalance int64        `gorm:"column:current_balance;not null;default:0" json:"current_balance"`
	Version        int64        `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CreditRelationship) TableName() string { return "credit_relationships" }

// AvailableCredit is the headroom left on the line. Negative when the limit
// was lowered below the outstanding balance.
func (r CreditRelationship) AvailableCredit() int64 {
	return r.CreditLimit - r.CurrentBalance
}

// EntryType classifies a balance history entry.
type EntryType string

const (
	// EntryCredit records a purchase on credit. Amount is positive.
	EntryCredit EntryType = "credit"
	// EntryDebit records a balance reduction, including compensation
	// reversals. Amount is negative.
	EntryDebit EntryType = "debit"
	// EntryPayment records a customer paying down debt. Amount is negative.
	EntryPayment EntryType = "payment"
)

// BalanceHistoryEntry is one row of the append-only ledger history. Entries
// are never updated or deleted; corrections append a reversing entry.
type BalanceHistoryEntry struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	RelationshipID snowflake.ID `gorm:"column:relationship_id;not null;index" json:"relationship_id"`
	Amount         int64        `gorm:"not null" json:"amount"`
	Type           EntryType    `gorm:"type:text;not null" json:"type"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (BalanceHistoryEntry) TableName() string { return "balance_history" }
