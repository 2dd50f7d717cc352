// Package resend implements the mailer.Sender contract over the Resend API.
package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/hirewire/pkg/mailer"
)

// ErrAPIKeyRequired is returned when the client is created without credentials.
var ErrAPIKeyRequired = errors.New("resend: api key is required")

// Sender delivers emails through Resend.
type Sender struct {
	client *resend.Client
	from   string
}

// NewSender creates a Resend-backed sender with a default From identity
// assembled from the config.
func NewSender(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Recipient(cfg.SenderName, cfg.SenderEmail),
	}, nil
}

// Send delivers the email, falling back to the configured From identity when
// the message does not set one.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	from := email.From
	if from == "" {
		from = s.from
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}
	if email.ReplyTo != "" {
		req.ReplyTo = email.ReplyTo
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	return nil
}
