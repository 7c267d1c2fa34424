// Package email sends notification mail through a configurable
// provider. Delivery is best-effort everywhere it is used; callers
// never fail a state transition on a send error.
package email

import (
	"errors"

	"github.com/smartbuspass/backend/config"
)

// Message is one outbound notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Sender is a generic interface for sending emails.
type Sender interface {
	Send(recipientEmail string, msg Message) (string, error)
}

// NewSender returns the Sender selected by configuration. An empty or
// unknown provider yields an error; callers may then run without a
// notifier.
func NewSender(conf *config.Email) (Sender, error) {
	if conf == nil {
		return nil, errors.New("email configuration is required")
	}
	switch conf.Provider {
	case "sendgrid":
		if err := validateSendGridConfig(conf.SendGrid); err != nil {
			return nil, err
		}
		return &SendGridSender{Config: conf.SendGrid}, nil
	case "mailgun":
		if err := validateMailgunConfig(conf.Mailgun); err != nil {
			return nil, err
		}
		return &MailgunSender{Config: conf.Mailgun}, nil
	case "smtp":
		if err := validateSMTPConfig(conf.SMTP); err != nil {
			return nil, err
		}
		return &SMTPSender{Config: conf.SMTP}, nil
	default:
		return nil, errors.New("no email provider configured")
	}
}
