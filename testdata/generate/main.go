package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/money"
)

type seedCard struct {
	PhoneNumber string `json:"phone_number"`
	Balance     string `json:"balance"`
	Carrier     string `json:"carrier"`
	MonthlyFee  string `json:"monthly_fee"`
	BillingDay  int    `json:"billing_day"`
	DataPlan    string `json:"data_plan"`
	Location    string `json:"location"`
}

// Writes testdata/sim_cards.json. The output is deterministic so the
// checked-in file can be regenerated byte for byte.
func main() {
	baseDir := findTestdataDir()

	carriers := []string{"China Mobile", "China Unicom", "China Telecom"}
	plans := []string{"5GB", "10GB", "30GB", "unlimited"}
	fees := []string{"8.00", "19.99", "29.00", "58.00"}
	locations := []string{"Beijing", "Shanghai", "Shenzhen", "Hangzhou"}

	var cards []seedCard
	for i := 0; i < 12; i++ {
		// Spread balances over 0..150 so some cards are short on their fee.
		balance := decimal.NewFromInt(int64((i * 37) % 150)).
			Add(decimal.New(int64((i*13)%100), -2))

		cards = append(cards, seedCard{
			PhoneNumber: fmt.Sprintf("1380013%04d", 8000+i),
			Balance:     money.Format(money.Round(balance)),
			Carrier:     carriers[i%len(carriers)],
			MonthlyFee:  fees[i%len(plans)],
			BillingDay:  (i*5)%28 + 1,
			DataPlan:    plans[i%len(plans)],
			Location:    locations[i%len(locations)],
		})
	}

	writeJSONFile(filepath.Join(baseDir, "sim_cards.json"), cards)
	fmt.Printf("Generated %d sim cards -> sim_cards.json\n", len(cards))
}

func writeJSONFile(path string, v any) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
}

func findTestdataDir() string {
	for _, c := range []string{"testdata", "../testdata"} {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
