package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/hirewire/internal/store"
)

// MatchAll is the fallback matcher used when no semantic-matching service
// is configured: every candidate matches, up to the limit.
type MatchAll struct{}

func (MatchAll) Match(_ context.Context, _ string, candidates []store.ListingSummary, limit int) ([]string, error) {
	ids := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(ids) == limit {
			break
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// HTTPMatcher delegates semantic matching to an external service.
type HTTPMatcher struct {
	client *http.Client
	url    string
}

// NewHTTPMatcher creates a matcher calling the service at url.
func NewHTTPMatcher(url string) *HTTPMatcher {
	return &HTTPMatcher{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    url,
	}
}

type matchRequest struct {
	Query      string           `json:"query"`
	Limit      int              `json:"limit"`
	Candidates []matchCandidate `json:"candidates"`
}

type matchCandidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type matchResponse struct {
	IDs []string `json:"ids"`
}

func (m *HTTPMatcher) Match(ctx context.Context, query string, candidates []store.ListingSummary, limit int) ([]string, error) {
	reqBody := matchRequest{Query: query, Limit: limit, Candidates: make([]matchCandidate, 0, len(candidates))}
	for _, c := range candidates {
		reqBody.Candidates = append(reqBody.Candidates, matchCandidate{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("digest: marshal match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("digest: build match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("digest: call matcher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("digest: matcher returned %d", resp.StatusCode)
	}

	var result matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("digest: decode match response: %w", err)
	}

	if len(result.IDs) > limit {
		result.IDs = result.IDs[:limit]
	}
	return result.IDs, nil
}

var (
	_ Matcher = MatchAll{}
	_ Matcher = (*HTTPMatcher)(nil)
)
