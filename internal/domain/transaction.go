package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindDeduct TransactionKind = "deduct"
	KindAdd    TransactionKind = "add"
)

// Transaction is an immutable ledger entry describing one balance-affecting
// operation. A failed deduction keeps PreviousBalance == NewBalance.
type Transaction struct {
	ID              int64           `json:"id"`
	SimID           int64           `json:"sim_id"`
	PhoneNumber     string          `json:"phone_number"`
	Amount          decimal.Decimal `json:"amount"`
	Kind            TransactionKind `json:"type"`
	Description     string          `json:"description"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}
