package email

import (
	"context"
	"errors"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/smartbuspass/backend/config"
)

// MailgunSender implements Sender for Mailgun.
type MailgunSender struct {
	Config *config.Mailgun
}

func (s *MailgunSender) Send(recipientEmail string, msg Message) (string, error) {
	mg := mailgun.NewMailgun(s.Config.Domain, s.Config.Key)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	message := mg.NewMessage(s.Config.From, msg.Subject, msg.Text)
	if err := message.AddRecipient(recipientEmail); err != nil {
		return "", err
	}
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	_, id, err := mg.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}

func validateMailgunConfig(config *config.Mailgun) error {
	if config == nil || config.Key == "" || config.Domain == "" || config.From == "" {
		return errors.New("invalid Mailgun configuration")
	}
	return nil
}
