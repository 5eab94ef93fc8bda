// Package simulator talks to the transaction simulation and trace
// service. Simulations execute a call bundle against a non-committing
// replica of chain state; nothing is broadcast.
package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// Request describes one simulation: execute Input against To from From
// with the given gas budget.
type Request struct {
	From  common.Address
	To    common.Address
	Input []byte
	Gas   uint64
}

// Result is a completed simulation. Status false means the transaction
// would revert; RevertReason carries the decoded reason when the
// service provides one.
type Result struct {
	ReportURL    string
	Status       bool
	RevertReason string
}

// Client is an HTTP client for the simulation service.
type Client struct {
	baseURL    string
	accessKey  string
	networkID  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds simulator client configuration.
type Config struct {
	BaseURL   string
	AccessKey string
	NetworkID string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewClient creates a simulation client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		accessKey:  cfg.AccessKey,
		networkID:  cfg.NetworkID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

type simulateRequest struct {
	NetworkID string `json:"network_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Input     string `json:"input"`
	Gas       string `json:"gas"`
}

type simulateResponse struct {
	Simulation struct {
		PublicURL    string `json:"public_url"`
		Status       bool   `json:"status"`
		ErrorMessage string `json:"error_message"`
	} `json:"simulation"`
}

// Simulate runs one simulation and returns its report.
func (c *Client) Simulate(ctx context.Context, req *Request) (*Result, error) {
	body, err := json.Marshal(&simulateRequest{
		NetworkID: c.networkID,
		From:      req.From.Hex(),
		To:        req.To.Hex(),
		Input:     hexutil.Encode(req.Input),
		Gas:       strconv.FormatUint(req.Gas, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal simulate request: %w", err)
	}

	url := c.baseURL + "/simulate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create simulate request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Access-Key", c.accessKey)

	c.logger.Debug("simulating-transaction",
		zap.String("from", req.From.Hex()),
		zap.String("to", req.To.Hex()),
		zap.Uint64("gas", req.Gas),
		zap.Int("input-bytes", len(req.Input)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, types.WrapSettlementError(types.KindUpstreamTimeout, "simulate", err)
		}
		return nil, types.WrapSettlementError(types.KindUpstreamUnavailable, "simulate", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.WrapSettlementError(types.KindUpstreamUnavailable, "simulate", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewSettlementError(types.KindUpstreamUnavailable, "simulate",
			"unexpected status %d from simulator: %s", resp.StatusCode, string(raw))
	}

	var sim simulateResponse
	if err := json.Unmarshal(raw, &sim); err != nil {
		return nil, types.NewSettlementError(types.KindUpstreamUnavailable, "simulate",
			"undecodable simulator response: %v", err)
	}

	result := &Result{
		ReportURL:    sim.Simulation.PublicURL,
		Status:       sim.Simulation.Status,
		RevertReason: sim.Simulation.ErrorMessage,
	}

	SimulationsTotal.WithLabelValues(statusLabel(result.Status)).Inc()
	c.logger.Info("simulation-completed",
		zap.Bool("status", result.Status),
		zap.String("report-url", result.ReportURL))

	return result, nil
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "revert"
}
