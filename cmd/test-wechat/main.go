// Command test-wechat sends the sample low-balance message to a webhook.
//
// Usage:
//
//	test-wechat [-webhook URL]
//
// Without -webhook the URL stored in settings is used.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/simnotice/simnotice/internal/app"
	"github.com/simnotice/simnotice/internal/config"
	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/notify"
)

func main() {
	os.Exit(run())
}

func run() int {
	webhook := flag.String("webhook", "", "webhook URL (defaults to the wechat_webhook_url setting)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	log := sl.SetupLogger(cfg.Env)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		return 1
	}
	defer a.Close()

	ctx := context.Background()
	raw, err := a.Settings.GetMany(ctx, domain.NotificationKeys)
	if err != nil {
		log.Error("failed to load settings", sl.Err(err))
		return 1
	}
	settings := domain.ParseNotificationSettings(raw)

	url := *webhook
	if url == "" {
		url = settings.WechatWebhookURL
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "no webhook URL: pass -webhook or set wechat_webhook_url")
		return 2
	}

	results := a.Notifier.NotifyLowBalance(ctx, notify.SampleCard(), domain.Channels{
		Wechat:         true,
		WebhookURL:     url,
		WechatTemplate: settings.WechatTemplate,
	})
	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(os.Stderr, "send failed: %s\n", r.Error)
			return 1
		}
	}

	fmt.Println("test message sent")
	return 0
}
