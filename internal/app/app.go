// Package app wires the stores, services and transports shared by the
// command entry points.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/simnotice/simnotice/internal/billing"
	"github.com/simnotice/simnotice/internal/config"
	"github.com/simnotice/simnotice/internal/ingestion"
	"github.com/simnotice/simnotice/internal/ledger"
	"github.com/simnotice/simnotice/internal/notify"
	"github.com/simnotice/simnotice/internal/repository"
	"github.com/simnotice/simnotice/internal/watchdog"
)

type App struct {
	DB *sql.DB

	Cards    *repository.SimCardRepo
	Txns     *repository.TransactionRepo
	Settings *repository.CachedSettings

	SMTP     *notify.SMTPSender
	Webhook  *notify.WebhookSender
	Notifier *notify.Notifier

	Ledger   *ledger.Service
	Billing  *billing.Engine
	Watchdog *watchdog.Service
	Importer *ingestion.Service
}

// New opens the database and builds every service. The caller owns Close.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	const op = "app.New"

	db, err := repository.InitDB(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{DB: db}

	a.Cards = repository.NewSimCardRepo(db)
	a.Txns = repository.NewTransactionRepo(db)
	a.Settings = repository.NewCachedSettings(repository.NewSettingRepo(db), cfg.SettingsCacheTTL)

	a.SMTP = notify.NewSMTPSender(cfg.SMTP, log)
	a.Webhook = notify.NewWebhookSender(cfg.WebhookTimeout, log)
	a.Notifier = notify.NewNotifier(a.SMTP, a.Webhook, log)

	a.Ledger = ledger.NewService(a.Txns, a.Cards, log)
	a.Billing = billing.NewEngine(a.Cards, a.Ledger, a.Settings, a.Notifier, billing.Options{
		Recipient:        cfg.Alert.RecipientEmail,
		DefaultThreshold: cfg.Alert.BalanceThreshold,
	}, log)
	a.Watchdog = watchdog.NewService(a.Cards, a.Settings, a.Notifier,
		cfg.Alert.RecipientEmail, cfg.Alert.BalanceThreshold, log)
	a.Importer = ingestion.NewService(a.Cards, log)

	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
