// Package testutil provides mock upstream services for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
)

// AggregatorResult mirrors the aggregator's success payload.
type AggregatorResult struct {
	EffectiveOutputAmount string `json:"effectiveOutputAmount"`
	Calldata              string `json:"calldata"`
	Router                string `json:"router"`
}

// AggregatorResponse mirrors the aggregator's response envelope.
type AggregatorResponse struct {
	StatusCode int               `json:"statusCode,omitempty"`
	Error      string            `json:"error,omitempty"`
	Result     *AggregatorResult `json:"result,omitempty"`
}

// MockAggregator is a mock HTTP server that simulates the swap
// aggregator API.
type MockAggregator struct {
	*httptest.Server

	mu       sync.RWMutex
	response AggregatorResponse
	rawBody  string // when non-empty, served verbatim instead of response

	calls atomic.Int64
}

// NewMockAggregator creates a mock aggregator serving the given response.
func NewMockAggregator(resp AggregatorResponse) *MockAggregator {
	mock := &MockAggregator{response: resp}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.calls.Add(1)

		mock.mu.RLock()
		defer mock.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		if mock.rawBody != "" {
			_, _ = w.Write([]byte(mock.rawBody))
			return
		}

		_ = json.NewEncoder(w).Encode(mock.response)
	}))

	return mock
}

// SetResponse replaces the served response.
func (m *MockAggregator) SetResponse(resp AggregatorResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = resp
	m.rawBody = ""
}

// SetRawBody makes the server reply with a verbatim body, for malformed
// response tests.
func (m *MockAggregator) SetRawBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawBody = body
}

// Calls returns how many requests the mock has served.
func (m *MockAggregator) Calls() int64 {
	return m.calls.Load()
}
