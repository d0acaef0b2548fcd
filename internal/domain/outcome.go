package domain

import "github.com/shopspring/decimal"

type OutcomeKind string

const (
	OutcomeDeducted          OutcomeKind = "deducted"
	OutcomeInsufficientFunds OutcomeKind = "insufficient_funds"
	OutcomeFailed            OutcomeKind = "failed"
)

// BillingOutcome is what happened to a single card during a billing run.
type BillingOutcome struct {
	SimID       int64           `json:"sim_id"`
	PhoneNumber string          `json:"phone_number"`
	Kind        OutcomeKind     `json:"kind"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	Reason      string          `json:"reason,omitempty"`
}

func Deducted(card SimCard, newBalance decimal.Decimal) BillingOutcome {
	return BillingOutcome{SimID: card.ID, PhoneNumber: card.PhoneNumber, Kind: OutcomeDeducted, NewBalance: newBalance}
}

func InsufficientFunds(card SimCard) BillingOutcome {
	return BillingOutcome{SimID: card.ID, PhoneNumber: card.PhoneNumber, Kind: OutcomeInsufficientFunds, NewBalance: card.Balance}
}

func Failed(card SimCard, reason string) BillingOutcome {
	return BillingOutcome{SimID: card.ID, PhoneNumber: card.PhoneNumber, Kind: OutcomeFailed, NewBalance: card.Balance, Reason: reason}
}
