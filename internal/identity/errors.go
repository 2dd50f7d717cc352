package identity

import "errors"

var (
	ErrExecutorRequired  = errors.New("identity: step executor is required")
	ErrVerifierRequired  = errors.New("identity: verifier is required")
	ErrStoreRequired     = errors.New("identity: store is required")
	ErrCacheRequired     = errors.New("identity: cache is required")
	ErrSecretRequired    = errors.New("identity: webhook secret is required")
	ErrSignatureMismatch = errors.New("identity: signature mismatch")
	ErrUnknownEventType  = errors.New("identity: unknown event type")
)
