package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/simnotice/simnotice/internal/billing"
	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/ingestion"
	"github.com/simnotice/simnotice/internal/ledger"
	resp "github.com/simnotice/simnotice/internal/lib/api/response"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/money"
	"github.com/simnotice/simnotice/internal/notify"
	"github.com/simnotice/simnotice/internal/repository"
	"github.com/simnotice/simnotice/internal/watchdog"
)

// SMTPVerifier checks that the mail server accepts our credentials.
type SMTPVerifier interface {
	Verify(ctx context.Context) error
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Cards     *repository.SimCardRepo
	Txns      *repository.TransactionRepo
	Settings  *repository.CachedSettings
	Ledger    *ledger.Service
	Billing   *billing.Engine
	Watchdog  *watchdog.Service
	Notifier  *notify.Notifier
	Importer  *ingestion.Service
	SMTP      SMTPVerifier
	Recipient string
}

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	Deps
	log      *slog.Logger
	validate *validator.Validate
}

func NewHandlers(deps Deps, log *slog.Logger) *Handlers {
	return &Handlers{Deps: deps, log: log, validate: validator.New()}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, resp.Error(msg, status))
}

func (h *Handlers) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		sl.String("op", op),
		sl.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// decode reads and validates a JSON body, writing the error response itself.
// An empty body is accepted when optional is set.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, req any, optional bool) bool {
	err := render.DecodeJSON(r.Body, req)
	if err != nil && !(optional && errors.Is(err, io.EOF)) {
		log.Error("failed to decode request body", sl.Err(err))
		writeError(w, r, http.StatusBadRequest, "failed to decode request body")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, r, http.StatusBadRequest, resp.ValidationError(verrs))
			return false
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func (h *Handlers) notificationSettings(ctx context.Context) (domain.NotificationSettings, error) {
	raw, err := h.Settings.GetMany(ctx, domain.NotificationKeys)
	if err != nil {
		return domain.NotificationSettings{}, err
	}
	return domain.ParseNotificationSettings(raw), nil
}

// --- SIM cards ---

func (h *Handlers) ListSims(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Cards.List(r.Context())
	if err != nil {
		h.logger(r, "api.ListSims").Error("failed to list cards", sl.Err(err))
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if cards == nil {
		cards = []domain.SimCard{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"sims": cards, "total": len(cards)})
}

func (h *Handlers) GetSim(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	card, err := h.Cards.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrCardNotFound) {
		writeError(w, r, http.StatusNotFound, "sim card not found")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

// ImportSims accepts a multipart upload with a "file" field and an
// optional "format" (csv|json, default taken from the file extension).
func (h *Handlers) ImportSims(w http.ResponseWriter, r *http.Request) {
	const op = "api.ImportSims"

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	result, err := h.Importer.Import(r.Context(), data, format)
	if err != nil {
		h.logger(r, op).Warn("import rejected", sl.Err(err))
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

type RechargeRequest struct {
	Amount      json.Number `json:"amount" validate:"required,numeric"`
	Description string      `json:"description" validate:"max=255"`
}

func (h *Handlers) RechargeSim(w http.ResponseWriter, r *http.Request) {
	const op = "api.RechargeSim"
	log := h.logger(r, op)

	id, ok := parseID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req RechargeRequest
	if !h.decode(w, r, log, &req, false) {
		return
	}

	amount, err := money.Parse(req.Amount.String())
	if err != nil || !amount.IsPositive() {
		writeError(w, r, http.StatusBadRequest, "amount must be greater than 0")
		return
	}

	tx, err := h.Ledger.Recharge(r.Context(), id, amount, req.Description)
	switch {
	case errors.Is(err, ledger.ErrUnknownCard):
		writeError(w, r, http.StatusNotFound, "sim card not found")
		return
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, r, http.StatusBadRequest, "amount must be greater than 0")
		return
	case err != nil:
		log.Error("recharge failed", sl.Err(err))
		writeError(w, r, http.StatusInternalServerError, "recharge failed")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":          "recharge successful",
		"previous_balance": money.Format(tx.PreviousBalance),
		"new_balance":      money.Format(tx.NewBalance),
		"transaction":      tx,
	})
}

func (h *Handlers) ListSimTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if _, err := h.Cards.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			writeError(w, r, http.StatusNotFound, "sim card not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	txns, err := h.Txns.ListBySim(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"transactions": txns, "limit": limit})
}

// --- Settings ---

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.Settings.GetAll(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"settings": all})
}

type BatchSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,required,max=100,endkeys"`
}

func (h *Handlers) BatchUpdateSettings(w http.ResponseWriter, r *http.Request) {
	const op = "api.BatchUpdateSettings"
	log := h.logger(r, op)

	var req BatchSettingsRequest
	if !h.decode(w, r, log, &req, false) {
		return
	}

	if err := h.Settings.BatchUpdate(r.Context(), req.Settings); err != nil {
		log.Error("failed to update settings", sl.Err(err))
		writeError(w, r, http.StatusInternalServerError, "failed to update settings")
		return
	}

	log.Info("settings updated", sl.Any("keys", len(req.Settings)))
	writeJSON(w, r, http.StatusOK, resp.OK())
}

type TestEmailRequest struct {
	Recipient string `json:"recipient" validate:"omitempty,email"`
}

func (h *Handlers) TestEmail(w http.ResponseWriter, r *http.Request) {
	const op = "api.TestEmail"
	log := h.logger(r, op)

	var req TestEmailRequest
	if !h.decode(w, r, log, &req, true) {
		return
	}

	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		recipient = h.Recipient
	}
	if recipient == "" {
		writeError(w, r, http.StatusBadRequest, "no recipient given and RECIPIENT_EMAIL is not set")
		return
	}

	settings, err := h.notificationSettings(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	ch := domain.Channels{
		Email:         true,
		Recipient:     recipient,
		EmailSubject:  settings.EmailSubject,
		EmailTemplate: settings.EmailTemplate,
	}
	h.sendTest(w, r, ch)
}

type TestWechatRequest struct {
	WebhookURL string `json:"webhook_url" validate:"omitempty,url"`
}

func (h *Handlers) TestWechat(w http.ResponseWriter, r *http.Request) {
	const op = "api.TestWechat"
	log := h.logger(r, op)

	var req TestWechatRequest
	if !h.decode(w, r, log, &req, true) {
		return
	}

	settings, err := h.notificationSettings(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	url := strings.TrimSpace(req.WebhookURL)
	if url == "" {
		url = settings.WechatWebhookURL
	}
	if url == "" {
		writeError(w, r, http.StatusBadRequest, "webhook url is not configured")
		return
	}

	ch := domain.Channels{
		Wechat:         true,
		WebhookURL:     url,
		WechatTemplate: settings.WechatTemplate,
	}
	h.sendTest(w, r, ch)
}

func (h *Handlers) sendTest(w http.ResponseWriter, r *http.Request, ch domain.Channels) {
	results := h.Notifier.NotifyLowBalance(r.Context(), notify.SampleCard(), ch)
	if len(results) == 0 {
		writeError(w, r, http.StatusBadRequest, "channel not configured")
		return
	}

	res := results[0]
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, r, status, res)
}

func (h *Handlers) TestEmailConnection(w http.ResponseWriter, r *http.Request) {
	const op = "api.TestEmailConnection"

	if err := h.SMTP.Verify(r.Context()); err != nil {
		h.logger(r, op).Warn("smtp verification failed", sl.Err(err))
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, resp.OK())
}

// --- Runs ---

func (h *Handlers) RunBilling(w http.ResponseWriter, r *http.Request) {
	res, err := h.Billing.Run(r.Context())
	if err != nil {
		h.logger(r, "api.RunBilling").Error("billing run failed", sl.Err(err))
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

type SweepRequest struct {
	Threshold json.Number `json:"threshold" validate:"omitempty,numeric"`
}

func (h *Handlers) RunSweep(w http.ResponseWriter, r *http.Request) {
	const op = "api.RunSweep"
	log := h.logger(r, op)

	var req SweepRequest
	if !h.decode(w, r, log, &req, true) {
		return
	}

	var (
		res *watchdog.SweepResult
		err error
	)
	if req.Threshold != "" {
		threshold, perr := money.Parse(req.Threshold.String())
		if perr != nil {
			writeError(w, r, http.StatusBadRequest, perr.Error())
			return
		}
		res, err = h.Watchdog.Sweep(r.Context(), threshold)
	} else {
		res, err = h.Watchdog.Run(r.Context())
	}
	if err != nil {
		log.Error("sweep failed", sl.Err(err))
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
