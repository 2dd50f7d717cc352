package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/internal/identity"
)

func TestHMACVerifier(t *testing.T) {
	t.Parallel()

	t.Run("requires secret", func(t *testing.T) {
		t.Parallel()
		_, err := identity.NewHMACVerifier("")
		require.ErrorIs(t, err, identity.ErrSecretRequired)
	})

	t.Run("accepts valid signature", func(t *testing.T) {
		t.Parallel()
		v, err := identity.NewHMACVerifier("whsec_test")
		require.NoError(t, err)

		body := []byte(`{"data":{"id":"u1"}}`)
		headers := map[string]string{identity.SignatureHeader: v.Sign(body)}
		require.NoError(t, v.Verify(body, headers))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		t.Parallel()
		v, err := identity.NewHMACVerifier("whsec_test")
		require.NoError(t, err)

		headers := map[string]string{identity.SignatureHeader: v.Sign([]byte(`{"a":1}`))}
		err = v.Verify([]byte(`{"a":2}`), headers)
		require.ErrorIs(t, err, identity.ErrSignatureMismatch)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		t.Parallel()
		v, err := identity.NewHMACVerifier("whsec_test")
		require.NoError(t, err)

		err = v.Verify([]byte(`{}`), nil)
		require.ErrorIs(t, err, identity.ErrSignatureMismatch)
	})

	t.Run("rejects malformed signature", func(t *testing.T) {
		t.Parallel()
		v, err := identity.NewHMACVerifier("whsec_test")
		require.NoError(t, err)

		headers := map[string]string{identity.SignatureHeader: "not-hex"}
		err = v.Verify([]byte(`{}`), headers)
		require.ErrorIs(t, err, identity.ErrSignatureMismatch)
	})

	t.Run("rejects signature from another secret", func(t *testing.T) {
		t.Parallel()
		v1, err := identity.NewHMACVerifier("whsec_one")
		require.NoError(t, err)
		v2, err := identity.NewHMACVerifier("whsec_two")
		require.NoError(t, err)

		body := []byte(`{"data":{}}`)
		headers := map[string]string{identity.SignatureHeader: v2.Sign(body)}
		require.ErrorIs(t, v1.Verify(body, headers), identity.ErrSignatureMismatch)
	})
}
