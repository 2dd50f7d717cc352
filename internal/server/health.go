package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const probeTimeout = 5 * time.Second

// handleHealthz reports readiness of each registered dependency.
func handleHealthz(probes map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(probes))
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(checks)
	}
}
