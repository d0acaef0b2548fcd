// Command check-balance alerts on every SIM card whose balance is below its
// monthly fee or the configured threshold. It changes no balances.
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
	log := sl.SetupLogger(cfg.Env).With(slog.String("cmd", "check-balance"))

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.Watchdog.Run(ctx)
	if err != nil {
		log.Error("balance check aborted", sl.Err(err))
		return 1
	}

	log.Info("balance check complete",
		slog.Bool("skipped", res.Skipped),
		slog.String("threshold", res.Threshold),
		slog.Int("checked", res.Checked),
		slog.Int("notified", res.Notified),
		slog.Int("failed", res.Failed),
	)
	return 0
}
