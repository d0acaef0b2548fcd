package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simnotice/simnotice/internal/config"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		DB:               config.DB{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "app.db")},
		SMTP:             config.SMTP{Port: 465, Timeout: time.Second},
		Alert:            config.Alert{BalanceThreshold: decimal.NewFromInt(10)},
		WebhookTimeout:   time.Second,
		SettingsCacheTTL: time.Second,
	}

	a, err := New(cfg, sl.Discard())
	require.NoError(t, err)
	defer a.Close()

	// fresh database: nothing due, watchdog runs with the seeded email channel
	res, err := a.Billing.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Success+res.InsufficientFunds+res.Failed)

	sweep, err := a.Watchdog.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, sweep.Skipped)
	assert.Zero(t, sweep.Checked)
}

func TestNew_BadDriver(t *testing.T) {
	_, err := New(&config.Config{DB: config.DB{Driver: "oracle"}}, sl.Discard())
	assert.Error(t, err)
}
