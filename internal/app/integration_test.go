package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/internal/bundle"
	"github.com/Ishita-02/The-DeFi-App/internal/leverage"
	"github.com/Ishita-02/The-DeFi-App/internal/quote"
	"github.com/Ishita-02/The-DeFi-App/internal/simulator"
	"github.com/Ishita-02/The-DeFi-App/internal/storage"
	"github.com/Ishita-02/The-DeFi-App/internal/testutil"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
	"github.com/Ishita-02/The-DeFi-App/pkg/healthprobe"
	"github.com/Ishita-02/The-DeFi-App/pkg/httpserver"
	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

var (
	itCollateral = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	itBorrow     = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	itReceiver   = common.HexToAddress("0x00000000000000000000000000000000000000AA")
	itPoolRouter = common.HexToAddress("0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2")
	itSwapRouter = common.HexToAddress("0x1111111254EEB25477B68fb85Ed929f73A960582")
)

// staticTokens serves fixed token metadata without touching a node.
type staticTokens struct {
	metas map[common.Address]types.TokenMeta
}

func (s *staticTokens) Meta(_ context.Context, token common.Address) (types.TokenMeta, error) {
	meta, ok := s.metas[token]
	if !ok {
		return types.TokenMeta{}, types.NewSettlementError(types.KindUpstreamUnavailable, "tokens",
			"unknown token %s", token.Hex())
	}
	return meta, nil
}

type integrationEnv struct {
	aggregator *testutil.MockAggregator
	simulator  *testutil.MockSimulator
	handler    http.Handler
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	logger := zap.NewNop()

	aggregator := testutil.NewMockAggregator(testutil.AggregatorResponse{
		Result: &testutil.AggregatorResult{
			EffectiveOutputAmount: "9500000000000000000",
			Calldata:              "0xdeadbeef",
			Router:                itSwapRouter.Hex(),
		},
	})
	t.Cleanup(aggregator.Close)

	sim := testutil.NewMockSimulator("https://dashboard.example/sim/xyz")
	t.Cleanup(sim.Close)

	encoder, err := bundle.NewEncoder(&bundle.EncoderConfig{
		PoolRouter: itPoolRouter,
		Receiver:   itReceiver,
		Logger:     logger,
	})
	require.NoError(t, err)

	orchestrator := leverage.New(&leverage.OrchestratorConfig{
		Mode:            config.ModeSimulate,
		Topology:        config.TopologyReceiver,
		Receiver:        itReceiver,
		GasLimit:        8_000_000,
		MetaTimeout:     time.Second,
		QuoteTimeout:    5 * time.Second,
		SimulateTimeout: 5 * time.Second,
		SubmitTimeout:   5 * time.Second,
		Tokens: &staticTokens{metas: map[common.Address]types.TokenMeta{
			itCollateral: {Address: itCollateral, Decimals: 18},
			itBorrow:     {Address: itBorrow, Decimals: 6},
		}},
		Quotes: quote.NewClient(&quote.Config{
			BaseURL:       aggregator.URL,
			APIKey:        "test-key",
			IntegratorPID: "test-pid",
			ChainID:       "ethereum",
			Timeout:       5 * time.Second,
			Logger:        logger,
		}),
		Premium: bundle.NewStaticPremium(bundle.DefaultPremiumRate),
		Encoder: encoder,
		Simulator: simulator.NewClient(&simulator.Config{
			BaseURL:   sim.URL,
			AccessKey: "test-access-key",
			NetworkID: "1",
			Timeout:   5 * time.Second,
			Logger:    logger,
		}),
		Sink:   storage.NewConsoleStorage(logger),
		Logger: logger,
	})

	srv := httpserver.New(&httpserver.Config{
		Port:          "0",
		Logger:        logger,
		HealthChecker: healthprobe.New(),
		Opener:        orchestrator,
	})

	return &integrationEnv{
		aggregator: aggregator,
		simulator:  sim,
		handler:    srv.Handler(),
	}
}

func (e *integrationEnv) openPosition(t *testing.T, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/open-position", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func requestBody() map[string]string {
	return map[string]string{
		"collateral":  itCollateral.Hex(),
		"coin":        itBorrow.Hex(),
		"colAmount":   "10",
		"coinAmount":  "1000",
		"userAddress": "0x000000000000000000000000000000000000dEaD",
	}
}

func TestOpenPositionEndToEnd(t *testing.T) {
	env := newIntegrationEnv(t)

	rec := env.openPosition(t, requestBody())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SimulationURL string `json:"simulationUrl"`
		SwapOut       string `json:"swapOut"`
		Parameters    struct {
			Collateral string `json:"collateral"`
			BaseAmount string `json:"baseAmount"`
		} `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "https://dashboard.example/sim/xyz", resp.SimulationURL)
	assert.Equal(t, "9500000000000000000", resp.SwapOut)
	assert.Equal(t, itCollateral.Hex(), resp.Parameters.Collateral)
	// 10 tokens at 18 decimals
	assert.Equal(t, "10000000000000000000", resp.Parameters.BaseAmount)

	assert.Equal(t, int64(1), env.aggregator.Calls())
	assert.Equal(t, int64(1), env.simulator.Calls())
}

func TestOpenPositionAggregatorRejection(t *testing.T) {
	env := newIntegrationEnv(t)
	env.aggregator.SetResponse(testutil.AggregatorResponse{
		StatusCode: 400,
		Error:      "insufficient liquidity for pair",
	})

	rec := env.openPosition(t, requestBody())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient liquidity for pair", resp.Message)

	// A refused quote never reaches the simulator.
	assert.Equal(t, int64(0), env.simulator.Calls())
}

func TestOpenPositionSimulatedRevert(t *testing.T) {
	env := newIntegrationEnv(t)
	env.simulator.SetRevert("HEALTH_FACTOR_LOWER_THAN_LIQUIDATION_THRESHOLD")

	rec := env.openPosition(t, requestBody())

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Details string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Details, "HEALTH_FACTOR_LOWER_THAN_LIQUIDATION_THRESHOLD")
}

func TestOpenPositionInvalidAddressIsBadRequest(t *testing.T) {
	env := newIntegrationEnv(t)

	body := requestBody()
	body["userAddress"] = "not-an-address"

	rec := env.openPosition(t, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), env.aggregator.Calls())
}
