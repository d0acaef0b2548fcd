// Package ingestion imports SIM card rosters from CSV or JSON files.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ImportResult is returned from a completed import.
type ImportResult struct {
	Parsed            int `json:"parsed"`
	Imported          int `json:"imported"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
	Failed            int `json:"failed"`
}

// CardStore is the subset of the card repository the importer needs.
type CardStore interface {
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Create(ctx context.Context, c *domain.SimCard) error
}

// Service imports rosters. Cards whose phone number already exists are
// skipped, so re-importing the same file is harmless.
type Service struct {
	cards CardStore
	log   *slog.Logger
}

func NewService(cards CardStore, log *slog.Logger) *Service {
	return &Service{cards: cards, log: log}
}

// Import parses data in the given format and stores new cards.
func (s *Service) Import(ctx context.Context, data []byte, format string) (*ImportResult, error) {
	const op = "ingestion.Import"
	log := s.log.With(sl.String("op", op), sl.String("format", format))

	var (
		cards []domain.SimCard
		err   error
	)
	switch format {
	case FormatCSV:
		cards, err = ParseCardsCSV(data)
	case FormatJSON:
		cards, err = ParseCardsJSON(data)
	default:
		return nil, fmt.Errorf("%s: unsupported format %q (expected csv or json)", op, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", op, err)
	}

	res := &ImportResult{Parsed: len(cards)}
	for i := range cards {
		c := &cards[i]

		exists, err := s.cards.ExistsByPhone(ctx, c.PhoneNumber)
		if err != nil {
			log.Warn("failed to check card", sl.String("phone_number", c.PhoneNumber), sl.Err(err))
			res.Failed++
			continue
		}
		if exists {
			res.DuplicatesSkipped++
			continue
		}

		if err := s.cards.Create(ctx, c); err != nil {
			log.Warn("failed to insert card", sl.String("phone_number", c.PhoneNumber), sl.Err(err))
			res.Failed++
			continue
		}
		res.Imported++
	}

	log.Info("roster imported",
		sl.Any("parsed", res.Parsed),
		sl.Any("imported", res.Imported),
		sl.Any("duplicates", res.DuplicatesSkipped),
		sl.Any("failed", res.Failed),
	)
	return res, nil
}
