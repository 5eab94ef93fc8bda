// Package chain watches chain state through the node's websocket
// JSON-RPC endpoint.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Header is a new block header notification.
type Header struct {
	Number     *big.Int
	Hash       string
	ParentHash string
	Timestamp  uint64
}

// HeadWatcher subscribes to newHeads over the node's websocket endpoint
// and delivers each header to a handler. One-shot: when the connection
// drops or the context is cancelled, Watch returns and the caller
// decides whether to start over.
type HeadWatcher struct {
	wsURL       string
	dialTimeout time.Duration
	logger      *zap.Logger
}

// NewHeadWatcher creates a head watcher for the given websocket URL.
func NewHeadWatcher(wsURL string, logger *zap.Logger) *HeadWatcher {
	return &HeadWatcher{
		wsURL:       wsURL,
		dialTimeout: 10 * time.Second,
		logger:      logger,
	}
}

type subscribeRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type subscriptionMessage struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Number     string `json:"number"`
			Hash       string `json:"hash"`
			ParentHash string `json:"parentHash"`
			Timestamp  string `json:"timestamp"`
		} `json:"result"`
	} `json:"params"`
}

// Watch connects, subscribes and delivers headers until the context is
// cancelled or the connection fails.
func (w *HeadWatcher) Watch(ctx context.Context, handler func(Header)) error {
	dialer := websocket.Dialer{HandshakeTimeout: w.dialTimeout}

	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial node websocket: %w", err)
	}
	defer conn.Close()

	w.logger.Info("head-watcher-connected", zap.String("url", w.wsURL))

	sub := subscribeRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_subscribe",
		Params:  []any{"newHeads"},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe to newHeads: %w", err)
	}

	// Unblock the read loop on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read head message: %w", err)
		}

		var msg subscriptionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			w.logger.Warn("head-message-undecodable", zap.Error(err))
			continue
		}

		// The subscription confirmation and other replies carry no method.
		if msg.Method != "eth_subscription" {
			continue
		}

		header, err := parseHeader(&msg)
		if err != nil {
			w.logger.Warn("head-header-undecodable", zap.Error(err))
			continue
		}

		w.logger.Debug("new-head",
			zap.String("number", header.Number.String()),
			zap.String("hash", header.Hash))

		handler(header)
	}
}

func parseHeader(msg *subscriptionMessage) (Header, error) {
	number, err := hexutil.DecodeBig(msg.Params.Result.Number)
	if err != nil {
		return Header{}, fmt.Errorf("decode block number %q: %w", msg.Params.Result.Number, err)
	}

	header := Header{
		Number:     number,
		Hash:       msg.Params.Result.Hash,
		ParentHash: msg.Params.Result.ParentHash,
	}

	if ts, err := hexutil.DecodeUint64(msg.Params.Result.Timestamp); err == nil {
		header.Timestamp = ts
	}

	return header, nil
}
