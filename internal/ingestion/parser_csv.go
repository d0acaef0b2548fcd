package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/money"
)

var requiredColumns = []string{"phone_number", "balance", "monthly_fee", "billing_day"}

// ParseCardsCSV parses a SIM roster in CSV form. Columns are matched by
// header name, so their order is free.
//
// Required header columns:
//
//	phone_number,balance,monthly_fee,billing_day
//
// Optional: carrier, data_plan, location.
func ParseCardsCSV(data []byte) ([]domain.SimCard, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var cards []domain.SimCard
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		balance, err := money.Parse(get(row, "balance"))
		if err != nil {
			return nil, fmt.Errorf("line %d balance: %w", lineNum, err)
		}
		fee, err := money.Parse(get(row, "monthly_fee"))
		if err != nil {
			return nil, fmt.Errorf("line %d monthly_fee: %w", lineNum, err)
		}
		day, err := strconv.Atoi(get(row, "billing_day"))
		if err != nil {
			return nil, fmt.Errorf("line %d billing_day: %w", lineNum, err)
		}

		card := domain.SimCard{
			PhoneNumber: get(row, "phone_number"),
			Balance:     money.Round(balance),
			Carrier:     get(row, "carrier"),
			MonthlyFee:  money.Round(fee),
			BillingDay:  day,
			DataPlan:    get(row, "data_plan"),
			Location:    get(row, "location"),
		}
		if err := validateCard(card); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		cards = append(cards, card)
	}

	return cards, nil
}
