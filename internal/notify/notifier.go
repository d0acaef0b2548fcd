package notify

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/template"
)

// Notifier renders and fans out a card notification to every ready channel.
type Notifier struct {
	email    EmailSender
	webhook  WebhookPoster
	renderer *template.Renderer
	log      *slog.Logger
}

func NewNotifier(email EmailSender, webhook WebhookPoster, log *slog.Logger) *Notifier {
	return &Notifier{
		email:    email,
		webhook:  webhook,
		renderer: template.NewRenderer(log),
		log:      log,
	}
}

// NotifyLowBalance sends the card's state over each active channel. Active
// channels lacking a recipient or webhook URL are skipped with a warning.
func (n *Notifier) NotifyLowBalance(ctx context.Context, card domain.SimCard, ch domain.Channels) []Result {
	const op = "notify.NotifyLowBalance"
	log := n.log.With(sl.String("op", op), sl.String("phone_number", card.PhoneNumber))

	data := card.TemplateData()
	var results []Result

	if ch.Email {
		if ch.EmailReady() {
			subject := template.OrDefault(ch.EmailSubject, template.DefaultEmailSubject)
			body := n.renderer.Render(template.OrDefault(ch.EmailTemplate, template.DefaultEmailTemplate), data)
			results = append(results, n.email.SendEmail(ctx, ch.Recipient, subject, body))
		} else {
			log.Warn("email channel active but no recipient configured")
		}
	}

	if ch.Wechat {
		if ch.WechatReady() {
			body := n.renderer.Render(template.OrDefault(ch.WechatTemplate, template.DefaultWechatTemplate), data)
			results = append(results, n.webhook.SendWebhookMessage(ctx, ch.WebhookURL, body))
		} else {
			log.Warn("wechat channel active but webhook url is empty")
		}
	}

	return results
}

// SampleCard is the fixed card used by test notifications.
func SampleCard() domain.SimCard {
	return domain.SimCard{
		PhoneNumber: "13800138000",
		Balance:     decimal.RequireFromString("9.99"),
		MonthlyFee:  decimal.RequireFromString("19.99"),
		BillingDay:  10,
		Carrier:     "sample",
	}
}
