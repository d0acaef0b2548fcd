package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/simnotice/simnotice/internal/api"
	"github.com/simnotice/simnotice/internal/app"
	"github.com/simnotice/simnotice/internal/config"
	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/ingestion"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/repository"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	log := sl.SetupLogger(cfg.Env)
	log.Info("starting server", slog.String("env", cfg.Env), slog.String("db_driver", cfg.DB.Driver))

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		return 1
	}
	defer a.Close()

	if cfg.Seed {
		seedIfEmpty(context.Background(), a.Cards, log)
	}

	h := api.NewHandlers(api.Deps{
		Cards:     a.Cards,
		Txns:      a.Txns,
		Settings:  a.Settings,
		Ledger:    a.Ledger,
		Billing:   a.Billing,
		Watchdog:  a.Watchdog,
		Notifier:  a.Notifier,
		SMTP:      a.SMTP,
		Importer:  a.Importer,
		Recipient: cfg.Alert.RecipientEmail,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(h, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", slog.String("address", srv.Addr), slog.String("api_base", "/api/v1"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", sl.Err(err))
		return 1
	}

	log.Info("server stopped")
	return 0
}

func seedIfEmpty(ctx context.Context, repo *repository.SimCardRepo, log *slog.Logger) {
	count, err := repo.Count(ctx)
	if err != nil {
		log.Error("failed to count sim cards", sl.Err(err))
		return
	}
	if count > 0 {
		log.Info("database already has sim cards, skipping seed", slog.Int("count", count))
		return
	}

	cards, err := loadSeedCards()
	if err != nil {
		log.Warn("failed to load seed data", sl.Err(err))
		return
	}

	inserted, err := repo.BulkCreate(ctx, cards)
	if err != nil {
		log.Warn("failed to seed sim cards", sl.Err(err))
		return
	}
	log.Info("seeded sim cards", slog.Int("count", inserted))
}

func loadSeedCards() ([]domain.SimCard, error) {
	candidates := []string{
		filepath.Join("testdata", "sim_cards.json"),
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", "sim_cards.json"),
			filepath.Join(dir, "..", "..", "testdata", "sim_cards.json"),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		return nil, fmt.Errorf("could not find sim_cards.json in any candidate path: %w", loadErr)
	}

	return ingestion.ParseCardsJSON(data)
}
