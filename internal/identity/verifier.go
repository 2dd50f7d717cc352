package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Webhook-Signature"

// Verifier checks a webhook delivery against its signature headers.
type Verifier interface {
	Verify(body []byte, headers map[string]string) error
}

// HMACVerifier verifies deliveries signed with HMAC-SHA256 over the raw
// body, hex encoded in SignatureHeader.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier for the shared webhook secret.
func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

func (v *HMACVerifier) Verify(body []byte, headers map[string]string) error {
	signature := headers[SignatureHeader]
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", ErrSignatureMismatch, SignatureHeader)
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature", ErrSignatureMismatch)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign computes the signature for a body, used by tests and local tooling.
func (v *HMACVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
