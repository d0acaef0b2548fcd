package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimCard is a prepaid SIM tracked by the system. Only Balance is mutated
// by the billing pipeline; the rest is maintained through the CRUD paths.
type SimCard struct {
	ID          int64           `json:"id"`
	PhoneNumber string          `json:"phone_number"`
	Balance     decimal.Decimal `json:"balance"`
	Carrier     string          `json:"carrier"`
	MonthlyFee  decimal.Decimal `json:"monthly_fee"`
	BillingDay  int             `json:"billing_day"`
	DataPlan    string          `json:"data_plan,omitempty"`
	Location    string          `json:"location,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// WithBalance returns a copy of the card carrying the given balance.
func (c SimCard) WithBalance(balance decimal.Decimal) SimCard {
	c.Balance = balance
	return c
}

// TemplateData flattens the card into the variables available to
// notification templates.
func (c SimCard) TemplateData() map[string]any {
	return map[string]any{
		"id":           c.ID,
		"phone_number": c.PhoneNumber,
		"balance":      c.Balance.StringFixed(2),
		"carrier":      c.Carrier,
		"monthly_fee":  c.MonthlyFee.StringFixed(2),
		"billing_day":  c.BillingDay,
		"data_plan":    c.DataPlan,
		"location":     c.Location,
	}
}
