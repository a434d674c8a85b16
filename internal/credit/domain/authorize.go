package domain

// DenialReason explains why an authorization was denied.
type DenialReason string

const (
	DenialNotApproved   DenialReason = "not_approved"
	DenialLimitExceeded DenialReason = "limit_exceeded"
)

// Decision is the outcome of authorizing a charge against a credit line. The
// snapshot fields record the relationship state the decision was made from.
type Decision struct {
	Approved bool
	Reason   DenialReason

	Balance int64
	Limit   int64
	Version int64
}

// Authorize decides whether a charge of amount may be placed on the
// relationship. It is a pure function of its inputs: no I/O, no clock. A
// charge equal to the remaining headroom is approved; one unit over is not.
func Authorize(rel CreditRelationship, amount int64) Decision {
	decision := Decision{
		Balance: rel.CurrentBalance,
		Limit:   rel.CreditLimit,
		Version: rel.Version,
	}
	if !rel.IsApproved {
		decision.Reason = DenialNotApproved
		return decision
	}
	if rel.CurrentBalance+amount > rel.CreditLimit {
		decision.Reason = DenialLimitExceeded
		return decision
	}
	decision.Approved = true
	return decision
}
