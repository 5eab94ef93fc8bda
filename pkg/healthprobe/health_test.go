package healthprobe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAlwaysOK(t *testing.T) {
	hc := New()

	rec := httptest.NewRecorder()
	hc.Health()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestReadyTogglesWithState(t *testing.T) {
	hc := New()

	rec := httptest.NewRecorder()
	hc.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	hc.SetReady(true)

	rec = httptest.NewRecorder()
	hc.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	hc.SetReady(false)

	rec = httptest.NewRecorder()
	hc.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
