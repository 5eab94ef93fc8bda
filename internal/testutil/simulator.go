package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// SimulatorResponse mirrors the simulate endpoint's response envelope.
type SimulatorResponse struct {
	Simulation struct {
		PublicURL    string `json:"public_url"`
		Status       bool   `json:"status"`
		ErrorMessage string `json:"error_message,omitempty"`
	} `json:"simulation"`
}

// MockSimulator is a mock HTTP server that simulates the transaction
// simulation service.
type MockSimulator struct {
	*httptest.Server

	mu         sync.RWMutex
	reportURL  string
	status     bool
	revertMsg  string
	httpStatus int
	delay      time.Duration

	calls atomic.Int64
}

// NewMockSimulator creates a mock simulator replying with a successful
// simulation pointing at reportURL.
func NewMockSimulator(reportURL string) *MockSimulator {
	mock := &MockSimulator{
		reportURL:  reportURL,
		status:     true,
		httpStatus: http.StatusOK,
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.calls.Add(1)

		mock.mu.RLock()
		delay := mock.delay
		httpStatus := mock.httpStatus
		var resp SimulatorResponse
		resp.Simulation.PublicURL = mock.reportURL
		resp.Simulation.Status = mock.status
		resp.Simulation.ErrorMessage = mock.revertMsg
		mock.mu.RUnlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		w.Header().Set("Content-Type", "application/json")
		if httpStatus != http.StatusOK {
			w.WriteHeader(httpStatus)
			return
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))

	return mock
}

// SetRevert makes simulations report an on-chain revert with the given
// reason.
func (m *MockSimulator) SetRevert(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = false
	m.revertMsg = reason
}

// SetHTTPStatus makes the server reply with a bare HTTP status code.
func (m *MockSimulator) SetHTTPStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpStatus = code
}

// SetDelay delays every response, for timeout tests.
func (m *MockSimulator) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many requests the mock has served.
func (m *MockSimulator) Calls() int64 {
	return m.calls.Load()
}
