// Package mailer renders markdown email templates and delivers them through
// a pluggable Sender. Templates carry YAML frontmatter (Subject) and are
// converted to HTML with goldmark, then wrapped in an HTML layout; the
// processed markdown doubles as the plain-text alternative.
//
// The delivery contract is deliberately narrow: Sender.Send takes a
// fully-prepared Email and returns an error. The resend subpackage
// implements it for the Resend API.
package mailer
