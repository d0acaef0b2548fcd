package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simnotice/simnotice/internal/lib/logger/sl"
)

func TestWebhookSender_SendWebhookMessage(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
	}{
		{name: "errcode zero", status: http.StatusOK, body: `{"errcode":0,"errmsg":"ok"}`, wantSuccess: true},
		{name: "errcode non zero", status: http.StatusOK, body: `{"errcode":93000,"errmsg":"invalid webhook url"}`},
		{name: "missing errcode", status: http.StatusOK, body: `{"errmsg":"ok"}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"errcode":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got markdownMessage
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			w := NewWebhookSender(time.Second, sl.Discard())
			res := w.SendWebhookMessage(context.Background(), srv.URL, "## hello")

			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, ChannelWechat, res.Channel)
			if !tt.wantSuccess {
				assert.NotEmpty(t, res.Error)
			}
			assert.Equal(t, "markdown", got.MsgType)
			assert.Equal(t, "## hello", got.Markdown.Content)
		})
	}
}

func TestWebhookSender_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewWebhookSender(time.Second, sl.Discard()).SendWebhookMessage(context.Background(), url, "x")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestWebhookSender_EmptyURL(t *testing.T) {
	res := NewWebhookSender(time.Second, sl.Discard()).SendWebhookMessage(context.Background(), "", "x")
	assert.False(t, res.Success)
	assert.Equal(t, ErrWebhookNotConfigured.Error(), res.Error)
}
