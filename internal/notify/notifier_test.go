package notify_test

import (
	"context"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/notify"
	mock_notify "github.com/simnotice/simnotice/internal/notify/mocks"
	"github.com/simnotice/simnotice/internal/template"
)

func TestNotifier_NotifyLowBalance(t *testing.T) {
	card := notify.SampleCard()
	ok := func(ch notify.Channel) notify.Result { return notify.Result{Channel: ch, Success: true} }

	tests := []struct {
		name      string
		channels  domain.Channels
		setup     func(e *mock_notify.MockEmailSender, w *mock_notify.MockWebhookPoster)
		wantCount int
	}{
		{
			name:     "email only with defaults",
			channels: domain.Channels{Email: true, Recipient: "ops@example.com"},
			setup: func(e *mock_notify.MockEmailSender, _ *mock_notify.MockWebhookPoster) {
				e.EXPECT().
					SendEmail(gomock.Any(), "ops@example.com", template.DefaultEmailSubject, gomock.Any()).
					DoAndReturn(func(_ context.Context, _, _, html string) notify.Result {
						assert.Contains(t, html, "13800138000")
						assert.Contains(t, html, "color: red;")
						return ok(notify.ChannelEmail)
					})
			},
			wantCount: 1,
		},
		{
			name: "both channels with configured templates",
			channels: domain.Channels{
				Email: true, Wechat: true,
				Recipient:      "ops@example.com",
				EmailSubject:   "Custom",
				EmailTemplate:  "card {{phone_number}} at {{balance}}",
				WebhookURL:     "https://hook.example.com",
				WechatTemplate: "**{{phone_number}}** {{balance < 5 ? 'ok' : 'low'}}",
			},
			setup: func(e *mock_notify.MockEmailSender, w *mock_notify.MockWebhookPoster) {
				e.EXPECT().SendEmail(gomock.Any(), "ops@example.com", "Custom", "card 13800138000 at 9.99").
					Return(ok(notify.ChannelEmail))
				w.EXPECT().SendWebhookMessage(gomock.Any(), "https://hook.example.com", "**13800138000** low").
					Return(ok(notify.ChannelWechat))
			},
			wantCount: 2,
		},
		{
			name:      "active channels without destinations are skipped",
			channels:  domain.Channels{Email: true, Wechat: true},
			setup:     func(*mock_notify.MockEmailSender, *mock_notify.MockWebhookPoster) {},
			wantCount: 0,
		},
		{
			name:     "wechat default template",
			channels: domain.Channels{Wechat: true, WebhookURL: "https://hook.example.com"},
			setup: func(_ *mock_notify.MockEmailSender, w *mock_notify.MockWebhookPoster) {
				w.EXPECT().SendWebhookMessage(gomock.Any(), "https://hook.example.com", gomock.Any()).
					DoAndReturn(func(_ context.Context, _, md string) notify.Result {
						assert.True(t, strings.Contains(md, `<font color="warning">9.99</font>`))
						return notify.Result{Channel: notify.ChannelWechat, Error: "errcode 93000"}
					})
			},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			e := mock_notify.NewMockEmailSender(ctrl)
			w := mock_notify.NewMockWebhookPoster(ctrl)
			tt.setup(e, w)

			n := notify.NewNotifier(e, w, sl.Discard())
			results := n.NotifyLowBalance(context.Background(), card, tt.channels)
			assert.Len(t, results, tt.wantCount)
		})
	}
}
