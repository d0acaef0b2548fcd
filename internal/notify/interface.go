package notify

import "context"

// EmailSender delivers one HTML email.
//
//go:generate mockgen -destination=mocks/mock_sender.go -source=interface.go
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) Result
}

// WebhookPoster delivers one markdown message to a webhook.
type WebhookPoster interface {
	SendWebhookMessage(ctx context.Context, url, markdown string) Result
}
