// Package mailer sends out-of-band messages such as team invitations.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailersend/mailersend-go"
)

// Message is one email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MailerSend delivers through the MailerSend API.
type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

// NewMailerSend creates a MailerSend sender.
func NewMailerSend(apiKey, fromEmail, fromName string) *MailerSend {
	return &MailerSend{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: fromName, Email: fromEmail},
	}
}

// Send implements Sender.
func (m *MailerSend) Send(ctx context.Context, msg Message) error {
	toName := msg.ToName
	if toName == "" {
		toName = msg.To
	}

	message := m.client.Email.NewMessage()
	message.SetFrom(m.from)
	message.SetRecipients([]mailersend.Recipient{{Name: toName, Email: msg.To}})
	message.SetSubject(msg.Subject)
	message.SetHTML(msg.HTML)
	message.SetText(msg.Text)

	if _, err := m.client.Email.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender only logs messages. Used when no mail API key is configured.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender creates a sender that writes messages to the log.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email not sent, mail delivery disabled", "to", msg.To, "subject", msg.Subject)
	return nil
}
