package service

import (
	"context"
	"fmt"

	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/messaging/email"
	"github.com/smartbuspass/backend/structs"
)

// Notifier sends pass decision mail to riders. Sends run in the
// background and never influence the outcome of the request that
// triggered them.
type Notifier struct {
	sender email.Sender
	logger *logger.Logger
}

func NewNotifier(sender email.Sender, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, logger: log}
}

// NotifyApproval mails the rider their pass code and, when one was
// generated during approval, their initial password.
func (n *Notifier) NotifyApproval(ctx context.Context, rider *structs.Rider, passCode, validUntil, password string) {
	if n.sender == nil || rider.Email == "" {
		return
	}

	body := fmt.Sprintf("Hello %s,\n\nYour bus pass application has been approved.\n\nPass code: %s\nValid until: %s\n", rider.Name, passCode, validUntil)
	if password != "" {
		body += fmt.Sprintf("\nYou can sign in with your email and the password: %s\nPlease change it after your first login.\n", password)
	}

	n.send(ctx, rider.Email, email.Message{
		Subject: "Your bus pass has been approved",
		Text:    body,
	})
}

// NotifyDecline mails the rider the rejection reason.
func (n *Notifier) NotifyDecline(ctx context.Context, rider *structs.Rider, reason string) {
	if n.sender == nil || rider.Email == "" {
		return
	}

	body := fmt.Sprintf("Hello %s,\n\nYour bus pass application has been declined.\n\nReason: %s\n\nYou may correct your application and apply again.\n", rider.Name, reason)

	n.send(ctx, rider.Email, email.Message{
		Subject: "Your bus pass application was declined",
		Text:    body,
	})
}

func (n *Notifier) send(ctx context.Context, recipient string, msg email.Message) {
	go func() {
		id, err := n.sender.Send(recipient, msg)
		if err != nil {
			n.logger.Error(ctx, "failed to send notification mail", "recipient", recipient, "error", err)
			return
		}
		n.logger.Info(ctx, "notification mail sent", "recipient", recipient, "message_id", id)
	}()
}
