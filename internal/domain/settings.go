package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotifyEmail  NotificationType = "email"
	NotifyWechat NotificationType = "wechat"
	NotifyBoth   NotificationType = "both"
)

// Setting keys as stored in the settings table.
const (
	KeyNotificationType       = "notification_type"
	KeyEmailEnabled           = "email_enabled"
	KeyWechatEnabled          = "wechat_enabled"
	KeyBalanceThreshold       = "balance_threshold"
	KeyNotificationDaysBefore = "notification_days_before"
	KeyEmailSubject           = "email_subject"
	KeyEmailTemplate          = "email_template"
	KeyWechatWebhookURL       = "wechat_webhook_url"
	KeyWechatTemplate         = "wechat_template"
)

// NotificationKeys lists every setting the billing and watchdog runs read.
var NotificationKeys = []string{
	KeyNotificationType,
	KeyEmailEnabled,
	KeyWechatEnabled,
	KeyBalanceThreshold,
	KeyNotificationDaysBefore,
	KeyEmailSubject,
	KeyEmailTemplate,
	KeyWechatWebhookURL,
	KeyWechatTemplate,
}

// Setting is a single row of the settings table.
type Setting struct {
	Key         string `json:"setting_key"`
	Value       string `json:"setting_value"`
	Description string `json:"description"`
}

// NotificationSettings is the typed view over the raw settings map.
type NotificationSettings struct {
	Type             NotificationType
	EmailEnabled     bool
	WechatEnabled    bool
	BalanceThreshold string
	// DaysBefore is stored but not consumed by any run.
	DaysBefore       string
	EmailSubject     string
	EmailTemplate    string
	WechatWebhookURL string
	WechatTemplate   string
}

// ParseNotificationSettings reads the string-valued settings map. Booleans
// are true only for the literal "true"; an empty notification type means
// email.
func ParseNotificationSettings(raw map[string]string) NotificationSettings {
	t := NotificationType(strings.TrimSpace(raw[KeyNotificationType]))
	if t == "" {
		t = NotifyEmail
	}
	return NotificationSettings{
		Type:             t,
		EmailEnabled:     raw[KeyEmailEnabled] == "true",
		WechatEnabled:    raw[KeyWechatEnabled] == "true",
		BalanceThreshold: raw[KeyBalanceThreshold],
		DaysBefore:       raw[KeyNotificationDaysBefore],
		EmailSubject:     raw[KeyEmailSubject],
		EmailTemplate:    raw[KeyEmailTemplate],
		WechatWebhookURL: strings.TrimSpace(raw[KeyWechatWebhookURL]),
		WechatTemplate:   raw[KeyWechatTemplate],
	}
}

// EmailActive reports whether the email channel applies.
func (s NotificationSettings) EmailActive() bool {
	return s.EmailEnabled || s.Type == NotifyBoth || s.Type == NotifyEmail
}

// WechatActive reports whether the webhook channel applies.
func (s NotificationSettings) WechatActive() bool {
	return s.WechatEnabled || s.Type == NotifyBoth || s.Type == NotifyWechat
}

// Threshold parses balance_threshold, falling back to def when the value is
// missing, unparsable or zero.
func (s NotificationSettings) Threshold(def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(s.BalanceThreshold))
	if err != nil || v.IsZero() {
		return def
	}
	return v
}

// Channels resolves the effective delivery configuration for a run.
func (s NotificationSettings) Channels(recipient string) Channels {
	return Channels{
		Email:          s.EmailActive(),
		Wechat:         s.WechatActive(),
		Recipient:      strings.TrimSpace(recipient),
		EmailSubject:   s.EmailSubject,
		EmailTemplate:  s.EmailTemplate,
		WebhookURL:     s.WechatWebhookURL,
		WechatTemplate: s.WechatTemplate,
	}
}

// Channels is the resolved per-run notification configuration.
type Channels struct {
	Email          bool
	Wechat         bool
	Recipient      string
	EmailSubject   string
	EmailTemplate  string
	WebhookURL     string
	WechatTemplate string
}

// EmailReady is true when email is active and has somewhere to go.
func (c Channels) EmailReady() bool { return c.Email && c.Recipient != "" }

// WechatReady is true when the webhook channel is active and configured.
func (c Channels) WechatReady() bool { return c.Wechat && c.WebhookURL != "" }

// Any reports whether at least one channel is active.
func (c Channels) Any() bool { return c.Email || c.Wechat }
