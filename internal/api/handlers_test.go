package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simnotice/simnotice/internal/api"
	"github.com/simnotice/simnotice/internal/billing"
	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/ingestion"
	"github.com/simnotice/simnotice/internal/ledger"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/notify"
	mock_notify "github.com/simnotice/simnotice/internal/notify/mocks"
	"github.com/simnotice/simnotice/internal/repository"
	"github.com/simnotice/simnotice/internal/watchdog"
)

type verifierFunc func(ctx context.Context) error

func (f verifierFunc) Verify(ctx context.Context) error { return f(ctx) }

type env struct {
	srv     *httptest.Server
	cards   *repository.SimCardRepo
	email   *mock_notify.MockEmailSender
	webhook *mock_notify.MockWebhookPoster
	card    domain.SimCard
}

func newEnv(t *testing.T, verify verifierFunc) *env {
	t.Helper()

	db, err := repository.InitDB(repository.DriverSQLite, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := gomock.NewController(t)
	log := sl.Discard()

	cards := repository.NewSimCardRepo(db)
	txns := repository.NewTransactionRepo(db)
	settings := repository.NewCachedSettings(repository.NewSettingRepo(db), time.Minute)
	l := ledger.NewService(txns, cards, log)

	email := mock_notify.NewMockEmailSender(ctrl)
	webhook := mock_notify.NewMockWebhookPoster(ctrl)
	notifier := notify.NewNotifier(email, webhook, log)

	now := func() time.Time { return time.Date(2026, 4, 7, 8, 0, 0, 0, time.UTC) }
	engine := billing.NewEngine(cards, l, settings, notifier, billing.Options{Recipient: "ops@example.com", Now: now}, log)
	wd := watchdog.NewService(cards, settings, notifier, "ops@example.com", decimal.Zero, log)

	if verify == nil {
		verify = func(context.Context) error { return nil }
	}

	h := api.NewHandlers(api.Deps{
		Cards: cards, Txns: txns, Settings: settings, Ledger: l,
		Billing: engine, Watchdog: wd, Notifier: notifier, SMTP: verify,
		Importer:  ingestion.NewService(cards, log),
		Recipient: "ops@example.com",
	}, log)

	card := domain.SimCard{
		PhoneNumber: "13800138000", Carrier: "cmcc",
		Balance: decimal.RequireFromString("30"), MonthlyFee: decimal.RequireFromString("20"), BillingDay: 7,
	}
	require.NoError(t, cards.Create(context.Background(), &card))

	srv := httptest.NewServer(api.NewRouter(h, log))
	t.Cleanup(srv.Close)

	return &env{srv: srv, cards: cards, email: email, webhook: webhook, card: card}
}

func (e *env) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res, out
}

func TestRechargeAndHistory(t *testing.T) {
	e := newEnv(t, nil)
	id := "/api/v1/sims/" + jsonID(e.card.ID)

	res, out := e.do(t, http.MethodPost, id+"/recharge", map[string]any{"amount": 12.345})
	require.Equal(t, http.StatusOK, res.StatusCode, out)
	assert.Equal(t, "30.00", out["previous_balance"])
	assert.Equal(t, "42.35", out["new_balance"])

	res, out = e.do(t, http.MethodGet, id+"/transactions", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	txns := out["transactions"].([]any)
	require.Len(t, txns, 1)
	tx := txns[0].(map[string]any)
	assert.Equal(t, "add", tx["type"])
	assert.Equal(t, "manual recharge", tx["description"])
}

func TestRecharge_Validation(t *testing.T) {
	e := newEnv(t, nil)
	id := "/api/v1/sims/" + jsonID(e.card.ID)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{name: "missing amount", path: id + "/recharge", body: map[string]any{}, status: http.StatusBadRequest},
		{name: "zero amount", path: id + "/recharge", body: map[string]any{"amount": 0}, status: http.StatusBadRequest},
		{name: "negative amount", path: id + "/recharge", body: map[string]any{"amount": -5}, status: http.StatusBadRequest},
		{name: "unknown card", path: "/api/v1/sims/999/recharge", body: map[string]any{"amount": 5}, status: http.StatusNotFound},
		{name: "bad id", path: "/api/v1/sims/abc/recharge", body: map[string]any{"amount": 5}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, out := e.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestSettings_BatchAndRead(t *testing.T) {
	e := newEnv(t, nil)

	res, _ := e.do(t, http.MethodPost, "/api/v1/settings/batch", map[string]any{
		"settings": map[string]string{"balance_threshold": "50", "notification_type": "email"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, out := e.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	found := false
	for _, s := range out["settings"].([]any) {
		m := s.(map[string]any)
		if m["setting_key"] == "balance_threshold" {
			found = true
			assert.Equal(t, "50", m["setting_value"])
		}
	}
	assert.True(t, found)

	res, _ = e.do(t, http.MethodPost, "/api/v1/settings/batch", map[string]any{"settings": map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRunBilling(t *testing.T) {
	e := newEnv(t, nil)

	// 30 - 20 = 10, not below the default threshold of 10
	res, out := e.do(t, http.MethodPost, "/api/v1/billing/run", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, out["success"])
	assert.EqualValues(t, 7, out["day"])

	// 10 < 20 now
	e.email.EXPECT().SendEmail(gomock.Any(), "ops@example.com", "Monthly fee deduction failed: insufficient balance", gomock.Any()).
		Return(notify.Result{Channel: notify.ChannelEmail, Success: true})
	res, out = e.do(t, http.MethodPost, "/api/v1/billing/run", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, out["insufficient_funds"])
}

func TestRunSweep(t *testing.T) {
	e := newEnv(t, nil)

	res, out := e.do(t, http.MethodPost, "/api/v1/watchdog/sweep", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 0, out["checked"])

	e.email.EXPECT().SendEmail(gomock.Any(), "ops@example.com", "SIM card low balance alert", gomock.Any()).
		Return(notify.Result{Channel: notify.ChannelEmail, Success: true})
	res, out = e.do(t, http.MethodPost, "/api/v1/watchdog/sweep", map[string]any{"threshold": "31"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, out["notified"])
	assert.Equal(t, "31.00", out["threshold"])
}

func TestTestNotifications(t *testing.T) {
	e := newEnv(t, verifierFunc(func(context.Context) error { return errors.New("535 authentication failed") }))

	e.email.EXPECT().SendEmail(gomock.Any(), "someone@example.com", gomock.Any(), gomock.Any()).
		Return(notify.Result{Channel: notify.ChannelEmail, Success: true, MessageID: "<x@y>"})
	res, out := e.do(t, http.MethodPost, "/api/v1/settings/test-email", map[string]any{"recipient": "someone@example.com"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "<x@y>", out["message_id"])

	res, _ = e.do(t, http.MethodPost, "/api/v1/settings/test-email", map[string]any{"recipient": "nope"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// no webhook configured in settings or request
	res, _ = e.do(t, http.MethodPost, "/api/v1/settings/test-wechat", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	e.webhook.EXPECT().SendWebhookMessage(gomock.Any(), "https://hook.example.com/x", gomock.Any()).
		Return(notify.Result{Channel: notify.ChannelWechat, Error: "errcode 93000"})
	res, out = e.do(t, http.MethodPost, "/api/v1/settings/test-wechat", map[string]any{"webhook_url": "https://hook.example.com/x"})
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Equal(t, false, out["success"])

	res, out = e.do(t, http.MethodGet, "/api/v1/settings/test-email-connection", nil)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Contains(t, out["error"], "authentication failed")
}

func TestGetSim(t *testing.T) {
	e := newEnv(t, nil)

	res, out := e.do(t, http.MethodGet, "/api/v1/sims/"+jsonID(e.card.ID), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "13800138000", out["phone_number"])

	res, _ = e.do(t, http.MethodGet, "/api/v1/sims/424242", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, out = e.do(t, http.MethodGet, "/api/v1/sims", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, out["total"])
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestImportSims(t *testing.T) {
	e := newEnv(t, nil)

	upload := func(filename, format, content string) (*http.Response, map[string]any) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if format != "" {
			require.NoError(t, mw.WriteField("format", format))
		}
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		res, err := http.Post(e.srv.URL+"/api/v1/sims/import", mw.FormDataContentType(), &buf)
		require.NoError(t, err)
		defer res.Body.Close()

		var out map[string]any
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
		return res, out
	}

	roster := "phone_number,balance,monthly_fee,billing_day\n13800138000,1,1,1\n13900000001,25.5,10,3\n"
	res, out := upload("roster.csv", "", roster)
	require.Equal(t, http.StatusOK, res.StatusCode, out)
	assert.EqualValues(t, 1, out["imported"])
	assert.EqualValues(t, 1, out["duplicates_skipped"])

	n, err := e.cards.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, _ = upload("roster.txt", "", roster)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res, _ = upload("roster.txt", "json", `[{"phone_number":"13900000002","balance":"3","monthly_fee":"2","billing_day":4}]`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
