package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/omarsldn/taskhub/internal/config"
)

// SendGridMailer delivers messages through the SendGrid v3 API.
type SendGridMailer struct {
	client      *sendgrid.Client
	fromAddress string
	fromName    string
}

// Ensure SendGridMailer implements Mailer
var _ Mailer = (*SendGridMailer)(nil)

// NewSendGridMailer creates a Mailer backed by SendGrid using the provided
// configuration.
func NewSendGridMailer(cfg config.MailConfig) *SendGridMailer {
	return &SendGridMailer{
		client:      sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

// Send implements the Mailer interface.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(m.fromName, m.fromAddress)
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	email := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid delivery failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid delivery rejected: status %d", resp.StatusCode)
	}
	return nil
}

// NoopMailer discards messages after logging them. It is used when no mail
// API key is configured, so local development never calls the provider.
type NoopMailer struct {
	logger *slog.Logger
}

// Ensure NoopMailer implements Mailer
var _ Mailer = (*NoopMailer)(nil)

// NewNoopMailer creates a NoopMailer.
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopMailer{logger: logger}
}

// Send implements the Mailer interface by logging and discarding the message.
func (m *NoopMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail delivery disabled, discarding message",
		slog.String("to", msg.ToAddress),
		slog.String("subject", msg.Subject))
	return nil
}
