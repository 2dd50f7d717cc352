package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/internal/identity"
	"github.com/dmitrymomot/hirewire/internal/server"
	"github.com/dmitrymomot/hirewire/pkg/queue"
)

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []identity.Delivery
	err      error
}

func (q *fakeQueue) Enqueue(_ context.Context, name string, payload any, _ ...queue.EnqueueOption) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	if name == identity.TaskName {
		q.enqueued = append(q.enqueued, payload.(identity.Delivery))
	}
	return nil
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func newRouter(t *testing.T, q *fakeQueue, probes map[string]func(ctx context.Context) error) http.Handler {
	t.Helper()
	r, err := server.NewRouter(server.Deps{Queue: q, Probes: probes})
	require.NoError(t, err)
	return r
}

func TestIdentityWebhookIngress(t *testing.T) {
	t.Parallel()

	t.Run("valid delivery is accepted and enqueued", func(t *testing.T) {
		t.Parallel()
		q := &fakeQueue{}
		router := newRouter(t, q, nil)

		body := `{"id":"evt_1","type":"identity.user.created","data":{"id":"u1"}}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(body))
		req.Header.Set(identity.SignatureHeader, "abc123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, q.enqueued, 1)

		delivery := q.enqueued[0]
		require.Equal(t, "evt_1", delivery.EventID)
		require.Equal(t, identity.EventUserCreated, delivery.Type)
		require.JSONEq(t, body, string(delivery.Body))
		require.Equal(t, "abc123", delivery.Headers[identity.SignatureHeader])
	})

	t.Run("malformed envelope is rejected", func(t *testing.T) {
		t.Parallel()
		q := &fakeQueue{}
		router := newRouter(t, q, nil)

		for _, body := range []string{"not json", `{}`, `{"id":"evt_1"}`, `{"type":"identity.user.created"}`} {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		}
		require.Empty(t, q.enqueued)
	})

	t.Run("oversized body is rejected as too large", func(t *testing.T) {
		t.Parallel()
		q := &fakeQueue{}
		router := newRouter(t, q, nil)

		body := `{"id":"evt_big","type":"identity.user.created","data":"` + strings.Repeat("x", 1<<20) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		require.Empty(t, q.enqueued)
	})

	t.Run("unreadable body is a bad request, not too large", func(t *testing.T) {
		t.Parallel()
		q := &fakeQueue{}
		router := newRouter(t, q, nil)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", brokenReader{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, q.enqueued)
	})

	t.Run("queue outage asks the provider to redeliver", func(t *testing.T) {
		t.Parallel()
		q := &fakeQueue{err: errors.New("queue down")}
		router := newRouter(t, q, nil)

		body := `{"id":"evt_1","type":"identity.user.created"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("response carries a request id", func(t *testing.T) {
		t.Parallel()
		router := newRouter(t, &fakeQueue{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		req = httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(`{}`))
		req.Header.Set("X-Request-ID", "upstream-id")
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	t.Run("healthy dependencies", func(t *testing.T) {
		t.Parallel()
		router := newRouter(t, &fakeQueue{}, map[string]func(ctx context.Context) error{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"postgres":"ok"`)
	})

	t.Run("failing dependency flips readiness", func(t *testing.T) {
		t.Parallel()
		router := newRouter(t, &fakeQueue{}, map[string]func(ctx context.Context) error{
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
