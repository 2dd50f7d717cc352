package mailer

import "errors"

var (
	ErrNoRecipient      = errors.New("mailer: no recipient")
	ErrTemplateNotFound = errors.New("mailer: template not found")
	ErrLayoutNotFound   = errors.New("mailer: layout not found")
	ErrRenderFailed     = errors.New("mailer: render failed")
	ErrSendFailed       = errors.New("mailer: send failed")
)
