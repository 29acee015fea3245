package telegram

import (
	"testing"
	"time"

	coreconfig "github.com/m3rciful/fishbot/core/config"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerWebhookMode(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeWebhook},
		Webhook:  coreconfig.WebhookConfig{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com"},
	}

	poller := BuildPoller(cfg)
	webhook, ok := poller.(*tele.Webhook)
	if !ok {
		t.Fatalf("poller type %T", poller)
	}
	if webhook.Listen != "0.0.0.0:8443" {
		t.Fatalf("listen = %q", webhook.Listen)
	}
	if webhook.Endpoint.PublicURL != "https://bot.example.com" {
		t.Fatalf("public url = %q", webhook.Endpoint.PublicURL)
	}
}

func TestBuildPollerLongPollTimeouts(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeLongpoll},
	}
	poller, ok := BuildPoller(cfg).(*tele.LongPoller)
	if !ok {
		t.Fatalf("poller type %T", BuildPoller(cfg))
	}
	if poller.Timeout != defaultLongPollTimeout {
		t.Fatalf("default timeout = %v", poller.Timeout)
	}

	cfg.Telegram.LongPollTimeoutSeconds = 25
	poller = BuildPoller(cfg).(*tele.LongPoller)
	if poller.Timeout != 25*time.Second {
		t.Fatalf("timeout = %v", poller.Timeout)
	}
}
