// Package mail builds and delivers transactional email.
package mail

import (
	"context"
	"fmt"

	"github.com/omarsldn/taskhub/internal/domain"
)

// Message is a fully rendered email ready for delivery.
type Message struct {
	ToAddress string
	ToName    string
	Subject   string
	Body      string
}

// Mailer delivers a single message. Implementations do not retry; the
// outbox dispatcher owns the retry policy.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Build renders the message for an outbox entry.
func Build(email *domain.OutboxEmail) (Message, error) {
	switch email.Kind {
	case domain.EmailKindWelcome:
		return Message{
			ToAddress: email.Recipient,
			ToName:    email.RecipientName,
			Subject:   "Thanks for joining in!",
			Body: fmt.Sprintf(
				"Welcome to the app, %s. Let me know how you get along with it.",
				email.RecipientName),
		}, nil
	case domain.EmailKindCancellation:
		return Message{
			ToAddress: email.Recipient,
			ToName:    email.RecipientName,
			Subject:   "Sorry to see you go!",
			Body: fmt.Sprintf(
				"Goodbye, %s. I hope to see you back sometime soon.",
				email.RecipientName),
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown email kind %q", email.Kind)
	}
}
