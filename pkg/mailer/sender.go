package mailer

import (
	"context"
	"fmt"
)

// Sender is the minimal delivery contract an email provider implements.
type Sender interface {
	// Send delivers a fully-prepared email. To, Subject, and HTML must be set.
	Send(ctx context.Context, email *Email) error
}

// Email is a prepared message ready for delivery.
type Email struct {
	Subject string
	HTML    string
	Text    string // plain-text alternative
	From    string // overrides the provider's default sender when set
	ReplyTo string
	To      []string
}

// Recipient formats a name and address into RFC 5322 form:
// "Name <email>", or just the address when the name is empty.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
