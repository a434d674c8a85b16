package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeApprovesWithinLimit(t *testing.T) {
	rel := CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
		Version:        7,
	}

	decision := Authorize(rel, 100_00)

	assert.True(t, decision.Approved)
	assert.Empty(t, decision.Reason)
	assert.Equal(t, int64(1450_00), decision.Balance)
	assert.Equal(t, int64(5000_00), decision.Limit)
	assert.Equal(t, int64(7), decision.Version)
}

func TestAuthorizeApprovesExactlyAtLimit(t *testing.T) {
	rel := CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	}

	decision := Authorize(rel, 3550_00)

	assert.True(t, decision.Approved)
}

func TestAuthorizeDeniesOneOverLimit(t *testing.T) {
	rel := CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 1450_00,
	}

	decision := Authorize(rel, 3550_01)

	assert.False(t, decision.Approved)
	assert.Equal(t, DenialLimitExceeded, decision.Reason)
}

func TestAuthorizeDeniesUnapproved(t *testing.T) {
	rel := CreditRelationship{
		IsApproved:     false,
		CreditLimit:    5000_00,
		CurrentBalance: 0,
	}

	decision := Authorize(rel, 1_00)

	assert.False(t, decision.Approved)
	assert.Equal(t, DenialNotApproved, decision.Reason)
}

func TestAuthorizeUnapprovedWinsOverLimit(t *testing.T) {
	rel := CreditRelationship{
		IsApproved:     false,
		CreditLimit:    0,
		CurrentBalance: 0,
	}

	decision := Authorize(rel, 10000_00)

	assert.Equal(t, DenialNotApproved, decision.Reason)
}

func TestAuthorizeIsDeterministic(t *testing.T) {
	rel := CreditRelationship{
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: 4000_00,
		Version:        3,
	}

	first := Authorize(rel, 2000_00)
	second := Authorize(rel, 2000_00)

	assert.Equal(t, first, second)
	assert.False(t, first.Approved)
	assert.Equal(t, DenialLimitExceeded, first.Reason)
}

func TestAvailableCredit(t *testing.T) {
	rel := CreditRelationship{CreditLimit: 5000_00, CurrentBalance: 1450_00}
	assert.Equal(t, int64(3550_00), rel.AvailableCredit())

	lowered := CreditRelationship{CreditLimit: 1000_00, CurrentBalance: 1450_00}
	assert.Equal(t, int64(-450_00), lowered.AvailableCredit())
}
