package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/hirewire/internal/identity"
	"github.com/dmitrymomot/hirewire/pkg/queue"
)

const maxWebhookBody = 1 << 20

// Enqueuer is the queue surface the ingress handler dispatches through.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...queue.EnqueueOption) error
}

// webhookEnvelope is the minimal shape ingress needs from a delivery; the
// raw body travels to the job untouched so the verify step sees the exact
// signed bytes.
type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// handleIdentityWebhook acks deliveries after enqueueing the reconciliation
// job. The unique key is the provider event ID, so a redelivered webhook
// collapses onto the job already queued.
func handleIdentityWebhook(q Enqueuer, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		var envelope webhookEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil || envelope.ID == "" || envelope.Type == "" {
			http.Error(w, "malformed webhook envelope", http.StatusBadRequest)
			return
		}

		delivery := identity.Delivery{
			EventID: envelope.ID,
			Type:    envelope.Type,
			Body:    body,
			Headers: map[string]string{
				identity.SignatureHeader: r.Header.Get(identity.SignatureHeader),
			},
		}

		err = q.Enqueue(r.Context(), identity.TaskName, delivery,
			queue.UniqueKey(delivery.EventID),
			queue.UniqueFor(24*time.Hour),
		)
		if err != nil {
			log.ErrorContext(r.Context(), "failed to enqueue webhook delivery",
				slog.String("event_id", envelope.ID),
				slog.Any("error", err),
			)
			// Tell the provider to redeliver; the unique key makes that safe.
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}
