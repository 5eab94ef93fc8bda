// Package quote fetches swap routes from the external aggregator.
package quote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// Request describes one quote lookup. OutputReceiver is the address the
// swap proceeds are routed to; the orchestrator chooses it per topology
// and never defaults it silently.
type Request struct {
	InputToken     common.Address
	OutputToken    common.Address
	InputAmount    *big.Int
	UserAddress    common.Address
	OutputReceiver common.Address
}

// Client is an HTTP client for the swap aggregator API.
type Client struct {
	baseURL       string
	apiKey        string
	integratorPID string
	chainID       string
	httpClient    *http.Client
	logger        *zap.Logger
}

// Config holds aggregator client configuration.
type Config struct {
	BaseURL       string
	APIKey        string
	IntegratorPID string
	ChainID       string
	Timeout       time.Duration
	Logger        *zap.Logger
}

// NewClient creates a new aggregator client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		integratorPID: cfg.IntegratorPID,
		chainID:       cfg.ChainID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: cfg.Logger,
	}
}

type aggregatorRequest struct {
	InputToken     string `json:"inputToken"`
	OutputToken    string `json:"outputToken"`
	InputAmount    string `json:"inputAmount"`
	UserAddress    string `json:"userAddress"`
	OutputReceiver string `json:"outputReceiver"`
	ChainID        string `json:"chainID"`
	UniquePID      string `json:"uniquePID"`
	IsPermit2      bool   `json:"isPermit2"`
}

type aggregatorResponse struct {
	StatusCode int               `json:"statusCode"`
	Error      string            `json:"error"`
	Result     *aggregatorResult `json:"result"`
}

type aggregatorResult struct {
	EffectiveOutputAmount flexInt `json:"effectiveOutputAmount"`
	Calldata              string  `json:"calldata"`
	Router                string  `json:"router"`
}

// flexInt accepts both JSON numbers and numeric strings; the aggregator
// has been observed sending either for large amounts.
type flexInt struct {
	value *big.Int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		return nil
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("not an integer: %q", s)
	}

	f.value = v
	return nil
}

// GetQuote performs one outbound call to the aggregator and returns a
// normalized SwapQuote. The returned CallPayload is opaque and must be
// passed through to the swap step verbatim.
func (c *Client) GetQuote(ctx context.Context, req *Request) (*types.SwapQuote, error) {
	if req.InputAmount == nil || req.InputAmount.Sign() <= 0 {
		return nil, types.NewSettlementError(types.KindInvalidAmount, "quote",
			"input amount must be strictly positive")
	}

	body, err := json.Marshal(&aggregatorRequest{
		InputToken:     req.InputToken.Hex(),
		OutputToken:    req.OutputToken.Hex(),
		InputAmount:    req.InputAmount.String(),
		UserAddress:    req.UserAddress.Hex(),
		OutputReceiver: req.OutputReceiver.Hex(),
		ChainID:        c.chainID,
		UniquePID:      c.integratorPID,
		IsPermit2:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create quote request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	c.logger.Debug("fetching-quote",
		zap.String("input-token", req.InputToken.Hex()),
		zap.String("output-token", req.OutputToken.Hex()),
		zap.String("input-amount", req.InputAmount.String()),
		zap.String("output-receiver", req.OutputReceiver.Hex()))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, types.WrapSettlementError(types.KindUpstreamTimeout, "quote", err)
		}
		return nil, types.WrapSettlementError(types.KindQuoteUnavailable, "quote", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.WrapSettlementError(types.KindQuoteUnavailable, "quote", err)
	}

	var agg aggregatorResponse
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, types.NewSettlementError(types.KindQuoteMalformed, "quote",
			"undecodable aggregator response: %v", err)
	}

	// The aggregator reports structured rejections (no route, amount below
	// threshold) as statusCode 400 in the body. The message passes through
	// to the caller verbatim.
	if agg.StatusCode == http.StatusBadRequest || (agg.Error != "" && agg.Result == nil) {
		return nil, types.NewSettlementError(types.KindQuoteRejected, "quote", "%s", agg.Error)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewSettlementError(types.KindQuoteUnavailable, "quote",
			"unexpected status %d from aggregator", resp.StatusCode)
	}

	return c.normalize(agg.Result)
}

func (c *Client) normalize(result *aggregatorResult) (*types.SwapQuote, error) {
	if result == nil {
		return nil, types.NewSettlementError(types.KindQuoteMalformed, "quote", "response has no result")
	}

	out := result.EffectiveOutputAmount.value
	if out == nil || out.Sign() <= 0 {
		return nil, types.NewSettlementError(types.KindQuoteMalformed, "quote",
			"missing or non-positive effectiveOutputAmount")
	}

	if !common.IsHexAddress(result.Router) {
		return nil, types.NewSettlementError(types.KindQuoteMalformed, "quote",
			"invalid router address %q", result.Router)
	}

	if result.Calldata == "" {
		return nil, types.NewSettlementError(types.KindQuoteMalformed, "quote", "missing calldata")
	}

	payload, err := hexutil.Decode(result.Calldata)
	if err != nil {
		return nil, types.NewSettlementError(types.KindQuoteMalformed, "quote",
			"undecodable calldata: %v", err)
	}

	q := &types.SwapQuote{
		OutputAmount: out,
		Router:       common.HexToAddress(result.Router),
		CallPayload:  payload,
		FetchedAt:    time.Now(),
	}

	QuotesFetchedTotal.Inc()
	c.logger.Debug("quote-fetched",
		zap.String("router", q.Router.Hex()),
		zap.String("output-amount", q.OutputAmount.String()),
		zap.Int("payload-bytes", len(q.CallPayload)))

	return q, nil
}
