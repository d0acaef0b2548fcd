// Command auto-billing deducts the monthly fee from every SIM card whose
// billing day is today. Run it once a day from cron.
//
// Exit status is 0 when the run completed, including when cards failed
// individually, and 1 when configuration or the database is unusable.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/simnotice/simnotice/internal/app"
	"github.com/simnotice/simnotice/internal/config"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
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
	log := sl.SetupLogger(cfg.Env).With(slog.String("cmd", "auto-billing"))

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.Billing.Run(ctx)
	if err != nil {
		log.Error("billing run aborted", sl.Err(err))
		return 1
	}

	log.Info("billing run complete",
		slog.String("run_id", res.RunID),
		slog.Int("success", res.Success),
		slog.Int("insufficient_funds", res.InsufficientFunds),
		slog.Int("failed", res.Failed),
	)
	return 0
}
