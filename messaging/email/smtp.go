package email

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/smartbuspass/backend/config"
)

// SMTPSender implements Sender over plain SMTP.
type SMTPSender struct {
	Config *config.SMTP
}

func (s *SMTPSender) Send(recipientEmail string, msg Message) (string, error) {
	auth := smtp.PlainAuth("", s.Config.Username, s.Config.Password, s.Config.Host)

	body := msg.Text
	contentType := "text/plain; charset=UTF-8"
	if msg.HTML != "" {
		body = msg.HTML
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.Config.From)
	fmt.Fprintf(&b, "To: %s\r\n", recipientEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n\r\n", contentType)
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	if err := smtp.SendMail(addr, auth, s.Config.From, []string{recipientEmail}, []byte(b.String())); err != nil {
		return "", err
	}
	return "", nil
}

func validateSMTPConfig(config *config.SMTP) error {
	if config == nil || config.Host == "" || config.Port == 0 || config.From == "" {
		return errors.New("invalid SMTP configuration")
	}
	return nil
}
