package mailer_test

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/pkg/mailer"
)

type captureSender struct {
	mu     sync.Mutex
	emails []*mailer.Email
	err    error
}

func (s *captureSender) Send(_ context.Context, email *mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.emails = append(s.emails, email)
	return nil
}

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"digest.md": &fstest.MapFile{Data: []byte(`---
Subject: "{{.Count}} new listings"
---

# Hello {{.Name}}

You have **{{.Count}}** new listings.
`)},
		"plain.md": &fstest.MapFile{Data: []byte("Just a body, no frontmatter.\n")},
		"layouts/base.html": &fstest.MapFile{Data: []byte(
			`<html><body>{{.Content}}</body></html>`,
		)},
	}
}

func TestMailerSend(t *testing.T) {
	t.Parallel()

	cfg := mailer.Config{FallbackSubject: "Notification", DefaultLayout: "base.html"}

	t.Run("renders markdown into layout", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := mailer.New(sender, mailer.NewRenderer(testTemplates()), cfg)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       []string{"user@example.com"},
			Template: "digest.md",
			Data:     map[string]any{"Name": "Ada", "Count": 3},
		})
		require.NoError(t, err)
		require.Len(t, sender.emails, 1)

		email := sender.emails[0]
		require.Equal(t, "3 new listings", email.Subject)
		require.Contains(t, email.HTML, "<html><body>")
		require.Contains(t, email.HTML, "<h1>Hello Ada</h1>")
		require.Contains(t, email.HTML, "<strong>3</strong>")
		require.Contains(t, email.Text, "# Hello Ada")
	})

	t.Run("explicit subject wins over frontmatter", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := mailer.New(sender, mailer.NewRenderer(testTemplates()), cfg)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       []string{"user@example.com"},
			Template: "digest.md",
			Data:     map[string]any{"Name": "Ada", "Count": 3},
			Subject:  "Custom subject",
		})
		require.NoError(t, err)
		require.Equal(t, "Custom subject", sender.emails[0].Subject)
	})

	t.Run("falls back to configured subject", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := mailer.New(sender, mailer.NewRenderer(testTemplates()), cfg)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       []string{"user@example.com"},
			Template: "plain.md",
		})
		require.NoError(t, err)
		require.Equal(t, "Notification", sender.emails[0].Subject)
	})

	t.Run("requires recipient", func(t *testing.T) {
		t.Parallel()

		m := mailer.New(&captureSender{}, mailer.NewRenderer(testTemplates()), cfg)

		err := m.Send(context.Background(), mailer.SendParams{Template: "plain.md"})
		require.ErrorIs(t, err, mailer.ErrNoRecipient)
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		m := mailer.New(&captureSender{}, mailer.NewRenderer(testTemplates()), cfg)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       []string{"user@example.com"},
			Template: "missing.md",
		})
		require.ErrorIs(t, err, mailer.ErrTemplateNotFound)
	})

	t.Run("missing layout", func(t *testing.T) {
		t.Parallel()

		m := mailer.New(&captureSender{}, mailer.NewRenderer(testTemplates()), cfg)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       []string{"user@example.com"},
			Template: "plain.md",
			Layout:   "missing.html",
		})
		require.ErrorIs(t, err, mailer.ErrLayoutNotFound)
	})
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Ada <ada@example.com>", mailer.Recipient("Ada", "ada@example.com"))
	require.Equal(t, "ada@example.com", mailer.Recipient("", "ada@example.com"))
}
