package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/simnotice/simnotice/internal/lib/logger/sl"
)

var ErrWebhookNotConfigured = errors.New("notify: webhook url not configured")

type markdownMessage struct {
	MsgType  string          `json:"msgtype"`
	Markdown markdownContent `json:"markdown"`
}

type markdownContent struct {
	Content string `json:"content"`
}

type webhookResponse struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// WebhookSender posts markdown messages to a group-bot webhook.
type WebhookSender struct {
	client *http.Client
	log    *slog.Logger
}

func NewWebhookSender(timeout time.Duration, log *slog.Logger) *WebhookSender {
	return &WebhookSender{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// SendWebhookMessage succeeds only when the endpoint answers errcode 0.
func (w *WebhookSender) SendWebhookMessage(ctx context.Context, url, markdown string) Result {
	const op = "notify.SendWebhookMessage"
	log := w.log.With(sl.String("op", op))

	if url == "" {
		return failure(ChannelWechat, ErrWebhookNotConfigured)
	}

	body, err := json.Marshal(markdownMessage{MsgType: "markdown", Markdown: markdownContent{Content: markdown}})
	if err != nil {
		return failure(ChannelWechat, fmt.Errorf("%s: %w", op, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(ChannelWechat, fmt.Errorf("%s: %w", op, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Error("webhook request failed", sl.Err(err))
		return failure(ChannelWechat, fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failure(ChannelWechat, fmt.Errorf("%s: read response: %w", op, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
		log.Error("webhook rejected", sl.Err(err))
		return failure(ChannelWechat, err)
	}

	var wr webhookResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return failure(ChannelWechat, fmt.Errorf("%s: decode response: %w", op, err))
	}
	if wr.ErrCode == nil {
		return failure(ChannelWechat, fmt.Errorf("%s: response has no errcode", op))
	}
	if *wr.ErrCode != 0 {
		err := fmt.Errorf("%s: errcode %d: %s", op, *wr.ErrCode, wr.ErrMsg)
		log.Error("webhook rejected", sl.Err(err))
		return failure(ChannelWechat, err)
	}

	log.Info("webhook message sent")
	return Result{Channel: ChannelWechat, Success: true}
}
