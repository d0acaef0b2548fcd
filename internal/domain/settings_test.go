package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNotificationSettings_ChannelResolution(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]string
		wantEmail  bool
		wantWechat bool
	}{
		{
			name:       "both overrides explicit flags",
			raw:        map[string]string{"notification_type": "both", "email_enabled": "false", "wechat_enabled": "false"},
			wantEmail:  true,
			wantWechat: true,
		},
		{
			name:       "empty type defaults to email",
			raw:        map[string]string{},
			wantEmail:  true,
			wantWechat: false,
		},
		{
			name:       "wechat type only",
			raw:        map[string]string{"notification_type": "wechat", "email_enabled": "false"},
			wantEmail:  false,
			wantWechat: true,
		},
		{
			name:       "explicit flag enables channel outside type",
			raw:        map[string]string{"notification_type": "email", "wechat_enabled": "true"},
			wantEmail:  true,
			wantWechat: true,
		},
		{
			name:       "non literal true is false",
			raw:        map[string]string{"notification_type": "wechat", "email_enabled": "TRUE"},
			wantEmail:  false,
			wantWechat: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseNotificationSettings(tt.raw)
			assert.Equal(t, tt.wantEmail, s.EmailActive())
			assert.Equal(t, tt.wantWechat, s.WechatActive())
		})
	}
}

func TestNotificationSettings_Threshold(t *testing.T) {
	def := decimal.NewFromInt(10)

	assert.True(t, decimal.RequireFromString("25.5").Equal(
		NotificationSettings{BalanceThreshold: "25.5"}.Threshold(def)))
	assert.True(t, def.Equal(NotificationSettings{BalanceThreshold: ""}.Threshold(def)))
	assert.True(t, def.Equal(NotificationSettings{BalanceThreshold: "abc"}.Threshold(def)))
	assert.True(t, def.Equal(NotificationSettings{BalanceThreshold: "0"}.Threshold(def)))
}

func TestChannels_Ready(t *testing.T) {
	s := ParseNotificationSettings(map[string]string{"notification_type": "both"})

	ch := s.Channels("")
	assert.False(t, ch.EmailReady())
	assert.False(t, ch.WechatReady())
	assert.True(t, ch.Any())

	s.WechatWebhookURL = "https://example.com/hook"
	ch = s.Channels(" ops@example.com ")
	assert.True(t, ch.EmailReady())
	assert.True(t, ch.WechatReady())
	assert.Equal(t, "ops@example.com", ch.Recipient)
}
