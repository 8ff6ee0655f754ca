package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Email struct {
	apiKey string
	to     string
}

func NewEmail(apiKey, to string) *Email {
	return &Email{apiKey: apiKey, to: to}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, text string) error {
	from := mail.NewEmail("campsched", "campsched@localhost")
	to := mail.NewEmail("", e.to)
	message := mail.NewSingleEmail(from, "campsched update", to, text, text)

	client := sendgrid.NewSendClient(e.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
