// Package notify reports run outcomes to the operator. Every message is
// logged; external delivery happens only on the channels configured at
// startup (Telegram primary, Slack webhook and email optional).
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/campsched/internal/config"
)

type Channel interface {
	Name() string
	Send(ctx context.Context, text string) error
}

type Notifier struct {
	channels []Channel
}

// FromRuntime builds a notifier with whichever channels the environment
// configures. With none configured the notifier is log-only.
func FromRuntime(rt config.Runtime) *Notifier {
	n := &Notifier{}
	if rt.TelegramBotToken != "" && rt.TelegramChatID != "" {
		n.channels = append(n.channels, NewTelegram(rt.TelegramBotToken, rt.TelegramChatID))
	}
	if rt.SlackWebhookURL != "" {
		n.channels = append(n.channels, NewSlackWebhook(rt.SlackWebhookURL))
	}
	if rt.SendGridAPIKey != "" && rt.AlertEmail != "" {
		n.channels = append(n.channels, NewEmail(rt.SendGridAPIKey, rt.AlertEmail))
	}
	return n
}

func New(channels ...Channel) *Notifier {
	return &Notifier{channels: channels}
}

// Send logs the message and pushes it to every configured channel. Delivery
// errors from all channels are joined and returned; the caller decides
// whether they matter.
func (n *Notifier) Send(ctx context.Context, text string) error {
	log.Printf("notify: %s", text)

	var errs []error
	for _, ch := range n.channels {
		if err := ch.Send(ctx, text); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) Channels() int { return len(n.channels) }
