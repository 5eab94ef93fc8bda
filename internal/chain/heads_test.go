package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// wsNode is a minimal websocket JSON-RPC node that confirms the
// subscription and pushes a fixed set of headers.
func wsNode(t *testing.T, headers []string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Expect the eth_subscribe request first.
		var sub map[string]any
		require.NoError(t, conn.ReadJSON(&sub))
		assert.Equal(t, "eth_subscribe", sub["method"])

		require.NoError(t, conn.WriteJSON(map[string]any{
			"jsonrpc": "2.0", "id": 1, "result": "0xsub1",
		}))

		for _, h := range headers {
			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(h), &payload))
			require.NoError(t, conn.WriteJSON(map[string]any{
				"jsonrpc": "2.0",
				"method":  "eth_subscription",
				"params":  map[string]any{"subscription": "0xsub1", "result": payload},
			}))
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestWatchDeliversHeaders(t *testing.T) {
	srv := wsNode(t, []string{
		`{"number":"0x10","hash":"0xaaa","parentHash":"0x999","timestamp":"0x64"}`,
		`{"number":"0x11","hash":"0xbbb","parentHash":"0xaaa","timestamp":"0x65"}`,
	})
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	watcher := NewHeadWatcher(wsURL, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Header, 2)
	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Watch(ctx, func(h Header) { got <- h })
	}()

	first := <-got
	assert.Equal(t, "16", first.Number.String())
	assert.Equal(t, "0xaaa", first.Hash)
	assert.Equal(t, uint64(0x64), first.Timestamp)

	second := <-got
	assert.Equal(t, "17", second.Number.String())
	assert.Equal(t, "0xaaa", second.ParentHash)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}

func TestWatchDialFailure(t *testing.T) {
	watcher := NewHeadWatcher("ws://127.0.0.1:1", zap.NewNop())

	err := watcher.Watch(context.Background(), func(Header) {})
	require.Error(t, err)
}
