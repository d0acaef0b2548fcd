package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/money"
)

var (
	ErrMissingPhone   = errors.New("phone_number is required")
	ErrBadBillingDay  = errors.New("billing_day must be between 1 and 31")
	ErrNegativeAmount = errors.New("balance and monthly_fee must not be negative")
)

// ParseCardsJSON parses a JSON array of cards as written by
// testdata/generate. Amounts may be numbers or strings.
func ParseCardsJSON(data []byte) ([]domain.SimCard, error) {
	var cards []domain.SimCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("unmarshal cards: %w", err)
	}

	for i := range cards {
		c := &cards[i]
		c.ID = 0
		c.PhoneNumber = strings.TrimSpace(c.PhoneNumber)
		c.Balance = money.Round(c.Balance)
		c.MonthlyFee = money.Round(c.MonthlyFee)
		if err := validateCard(*c); err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
	}
	return cards, nil
}

func validateCard(c domain.SimCard) error {
	if c.PhoneNumber == "" {
		return ErrMissingPhone
	}
	if c.BillingDay < 1 || c.BillingDay > 31 {
		return fmt.Errorf("%w: %d", ErrBadBillingDay, c.BillingDay)
	}
	if c.Balance.IsNegative() || c.MonthlyFee.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
