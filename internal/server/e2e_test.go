package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/internal/identity"
	"github.com/dmitrymomot/hirewire/internal/server"
	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/queue"
	"github.com/dmitrymomot/hirewire/pkg/steps"
	"github.com/dmitrymomot/hirewire/pkg/tagcache"
)

// inlineQueue runs reconciliation jobs synchronously, standing in for the
// worker pool.
type inlineQueue struct {
	reconciler *identity.Reconciler
}

func (q *inlineQueue) Enqueue(ctx context.Context, name string, payload any, _ ...queue.EnqueueOption) error {
	if name != identity.TaskName {
		return nil
	}
	return q.reconciler.Handle(ctx, payload.(identity.Delivery))
}

// TestWebhookRedeliveryEndToEnd drives a signed user.created delivery twice
// through ingress and reconciliation, expecting exactly one user and one
// default-preference record.
func TestWebhookRedeliveryEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	signer, err := identity.NewHMACVerifier("whsec_e2e")
	require.NoError(t, err)

	executor, err := steps.NewExecutor(steps.NewMemoryStore())
	require.NoError(t, err)

	cache := tagcache.New[any](tagcache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = cache.Close() })

	st := store.NewMemory()
	reconciler, err := identity.NewReconciler(executor, signer, st, cache)
	require.NoError(t, err)

	router, err := server.NewRouter(server.Deps{Queue: &inlineQueue{reconciler: reconciler}})
	require.NoError(t, err)

	body := `{
		"id": "evt_dup",
		"type": "identity.user.created",
		"data": {
			"id": "u1",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"primary_email_address_id": "em1",
			"email_addresses": [{"id": "em1", "email_address": "a@b.com"}]
		}
	}`
	signature := signer.Sign([]byte(body))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(body))
		req.Header.Set(identity.SignatureHeader, signature)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	user, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", user.Email)

	settings, err := st.GetUserNotificationSettings(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", settings.UserID)

	recipients, err := st.ListJobListingRecipients(ctx)
	require.NoError(t, err)
	require.Empty(t, recipients, "default settings keep the digest disabled")
}
