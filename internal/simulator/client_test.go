package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/internal/testutil"
	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

func newTestSimClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(&Config{
		BaseURL:   baseURL,
		AccessKey: "test-key",
		NetworkID: "1",
		Timeout:   timeout,
		Logger:    zap.NewNop(),
	})
}

func testRequest() *Request {
	return &Request{
		From:  common.HexToAddress("0x000000000000000000000000000000000000dEaD"),
		To:    common.HexToAddress("0x00000000000000000000000000000000000000AA"),
		Input: []byte{0x01, 0x02},
		Gas:   8_000_000,
	}
}

func TestSimulateSuccess(t *testing.T) {
	mock := testutil.NewMockSimulator("https://dashboard.example/sim/abc")
	defer mock.Close()

	c := newTestSimClient(mock.URL, 0)

	res, err := c.Simulate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.True(t, res.Status)
	assert.Equal(t, "https://dashboard.example/sim/abc", res.ReportURL)
	assert.Empty(t, res.RevertReason)
}

func TestSimulateRevert(t *testing.T) {
	mock := testutil.NewMockSimulator("https://dashboard.example/sim/rev")
	defer mock.Close()
	mock.SetRevert("SafeERC20: low-level call failed")

	c := newTestSimClient(mock.URL, 0)

	res, err := c.Simulate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, res.Status)
	assert.Equal(t, "SafeERC20: low-level call failed", res.RevertReason)
}

func TestSimulateUpstreamError(t *testing.T) {
	mock := testutil.NewMockSimulator("unused")
	defer mock.Close()
	mock.SetHTTPStatus(502)

	c := newTestSimClient(mock.URL, 0)

	_, err := c.Simulate(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, types.KindUpstreamUnavailable, types.KindOf(err))
}

func TestSimulateTransportError(t *testing.T) {
	mock := testutil.NewMockSimulator("unused")
	mock.Close()

	c := newTestSimClient(mock.URL, 0)

	_, err := c.Simulate(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, types.KindUpstreamUnavailable, types.KindOf(err))
}

func TestSimulateTimeout(t *testing.T) {
	mock := testutil.NewMockSimulator("unused")
	defer mock.Close()
	mock.SetDelay(200 * time.Millisecond)

	c := newTestSimClient(mock.URL, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Simulate(ctx, testRequest())
	require.Error(t, err)
	assert.Equal(t, types.KindUpstreamTimeout, types.KindOf(err))
}

func TestValidTxHash(t *testing.T) {
	tests := []struct {
		hash string
		want bool
	}{
		{"0x" + "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12", true},
		{"0x" + "AB12CD34EF56AB12CD34EF56AB12CD34EF56AB12CD34EF56AB12CD34EF56AB12", true},
		{"ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12", false},
		{"0x1234", false},
		{"0x" + "zz12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidTxHash(tt.hash), tt.hash)
	}
}
