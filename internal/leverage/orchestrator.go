// Package leverage orchestrates one leveraged-position run: validate the
// request, quote the swap, plan the flash-loan repayment, encode the
// atomic call bundle and settle it through the simulator or submitter.
package leverage

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/internal/bundle"
	"github.com/Ishita-02/The-DeFi-App/internal/quote"
	"github.com/Ishita-02/The-DeFi-App/internal/simulator"
	"github.com/Ishita-02/The-DeFi-App/internal/storage"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
	"github.com/Ishita-02/The-DeFi-App/pkg/types"
	"github.com/Ishita-02/The-DeFi-App/pkg/units"
)

// TokenSource resolves token metadata.
type TokenSource interface {
	Meta(ctx context.Context, token common.Address) (types.TokenMeta, error)
}

// QuoteSource fetches swap quotes from the aggregator.
type QuoteSource interface {
	GetQuote(ctx context.Context, req *quote.Request) (*types.SwapQuote, error)
}

// Simulator runs a built envelope against a chain replica.
type Simulator interface {
	Simulate(ctx context.Context, req *simulator.Request) (*simulator.Result, error)
}

// Submitter signs and broadcasts a built envelope.
type Submitter interface {
	Submit(ctx context.Context, env *types.FlashLoanEnvelope) (string, error)
}

// Orchestrator drives the pipeline. It is stateless across runs; every
// quote and bundle is a single-use artifact owned by one run and
// discarded with it. Nothing is retried: a failed step invalidates the
// run, and a retried run must start from a fresh quote.
type Orchestrator struct {
	mode        string
	topology    string
	receiver    common.Address
	gasLimit    uint64
	metaTimeout time.Duration
	quoteTO     time.Duration
	simulateTO  time.Duration
	submitTO    time.Duration

	tokens    TokenSource
	quotes    QuoteSource
	premium   bundle.PremiumSource
	encoder   *bundle.Encoder
	simulator Simulator
	submitter Submitter
	sink      storage.Storage
	logger    *zap.Logger
}

// OrchestratorConfig holds construction parameters and collaborators.
type OrchestratorConfig struct {
	Mode     string // config.ModeSimulate or config.ModeSubmit
	Topology string // config.TopologyReceiver or config.TopologyDirect
	Receiver common.Address
	GasLimit uint64

	MetaTimeout     time.Duration
	QuoteTimeout    time.Duration
	SimulateTimeout time.Duration
	SubmitTimeout   time.Duration

	Tokens    TokenSource
	Quotes    QuoteSource
	Premium   bundle.PremiumSource
	Encoder   *bundle.Encoder
	Simulator Simulator
	Submitter Submitter
	Sink      storage.Storage
	Logger    *zap.Logger
}

// New creates an orchestrator.
func New(cfg *OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		mode:        cfg.Mode,
		topology:    cfg.Topology,
		receiver:    cfg.Receiver,
		gasLimit:    cfg.GasLimit,
		metaTimeout: cfg.MetaTimeout,
		quoteTO:     cfg.QuoteTimeout,
		simulateTO:  cfg.SimulateTimeout,
		submitTO:    cfg.SubmitTimeout,
		tokens:      cfg.Tokens,
		quotes:      cfg.Quotes,
		premium:     cfg.Premium,
		encoder:     cfg.Encoder,
		simulator:   cfg.Simulator,
		submitter:   cfg.Submitter,
		sink:        cfg.Sink,
		logger:      cfg.Logger,
	}
}

// Open runs the full pipeline for one position request and always
// returns a classified result; no failure path escapes unhandled.
func (o *Orchestrator) Open(ctx context.Context, req *types.PositionRequest) *types.SettlementResult {
	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run-id", runID))
	start := time.Now()

	result := o.run(ctx, runID, logger, req)

	RunsTotal.WithLabelValues(string(result.Status)).Inc()
	RunDurationSeconds.Observe(time.Since(start).Seconds())

	o.record(result, logger)

	logger.Info("run-completed",
		zap.String("status", string(result.Status)),
		zap.Duration("elapsed", time.Since(start)))

	return result
}

func (o *Orchestrator) run(ctx context.Context, runID string, logger *zap.Logger, req *types.PositionRequest) *types.SettlementResult {
	// Validating: reject bad input before any network call.
	if err := req.Validate(); err != nil {
		return o.failed(runID, req, "validate", err, logger)
	}

	collateralToken := common.HexToAddress(req.CollateralToken)
	borrowToken := common.HexToAddress(req.BorrowToken)
	user := common.HexToAddress(req.UserAddress)

	metaCtx, cancel := context.WithTimeout(ctx, o.metaTimeout)
	defer cancel()

	collateralMeta, err := o.tokens.Meta(metaCtx, collateralToken)
	if err != nil {
		return o.failed(runID, req, "tokens", err, logger)
	}

	borrowMeta, err := o.tokens.Meta(metaCtx, borrowToken)
	if err != nil {
		return o.failed(runID, req, "tokens", err, logger)
	}

	collateralAmount, err := units.ToBaseUnits(req.CollateralAmount, collateralMeta.Decimals)
	if err != nil {
		return o.failed(runID, req, "units", err, logger)
	}

	borrowAmount, err := units.ToBaseUnits(req.BorrowAmount, borrowMeta.Decimals)
	if err != nil {
		return o.failed(runID, req, "units", err, logger)
	}

	// Quoting: the beneficiary is chosen deliberately per topology. In
	// receiver mode the receiver contract holds the proceeds and
	// executes the bundle; in direct mode they go straight to the user.
	beneficiary := o.receiver
	if o.topology == config.TopologyDirect {
		beneficiary = user
	}

	quoteCtx, cancelQuote := context.WithTimeout(ctx, o.quoteTO)
	defer cancelQuote()

	swapQuote, err := o.quotes.GetQuote(quoteCtx, &quote.Request{
		InputToken:     borrowMeta.Address,
		OutputToken:    collateralMeta.Address,
		InputAmount:    borrowAmount,
		UserAddress:    beneficiary,
		OutputReceiver: beneficiary,
	})
	if err != nil {
		var se *types.SettlementError
		if errors.As(err, &se) && se.Kind == types.KindQuoteRejected {
			logger.Info("quote-rejected", zap.String("reason", se.Message))
			return types.Rejected(runID, req, se.Message)
		}
		return o.failed(runID, req, "quote", err, logger)
	}

	// Planning: pure arithmetic on the fetched premium rate. The rate
	// lookup may hit the chain, so it gets the same bound as other
	// on-chain reads.
	rateCtx, cancelRate := context.WithTimeout(ctx, o.metaTimeout)
	defer cancelRate()

	rate, err := o.premium.Rate(rateCtx)
	if err != nil {
		return o.failed(runID, req, "plan", err, logger)
	}

	plan, err := bundle.ComputeRepayment(borrowAmount, rate)
	if err != nil {
		return o.failed(runID, req, "plan", err, logger)
	}

	// Encoding: invariant violations stop here, never on-chain.
	env, err := o.encoder.Encode(&bundle.EncodeParams{
		CollateralToken:  collateralMeta.Address,
		BorrowToken:      borrowMeta.Address,
		UserAddress:      user,
		CollateralAmount: collateralAmount,
		BorrowedAmount:   borrowAmount,
		Quote:            swapQuote,
		Plan:             plan,
	})
	if err != nil {
		logger.Error("bundle-inconsistent", zap.Error(err))
		return o.failed(runID, req, "encode", err, logger)
	}

	logger.Info("bundle-ready",
		zap.String("asset", env.Asset.Hex()),
		zap.String("flash-amount", env.Amount.String()),
		zap.String("swap-out", swapQuote.OutputAmount.String()),
		zap.String("repay-total", plan.Total.String()))

	// Settling.
	if o.mode == config.ModeSubmit {
		return o.settleSubmit(ctx, runID, req, env, swapQuote.OutputAmount, collateralAmount, logger)
	}

	return o.settleSimulate(ctx, runID, req, user, env, swapQuote.OutputAmount, collateralAmount, logger)
}

func (o *Orchestrator) settleSimulate(
	ctx context.Context,
	runID string,
	req *types.PositionRequest,
	user common.Address,
	env *types.FlashLoanEnvelope,
	projected, posted *big.Int,
	logger *zap.Logger,
) *types.SettlementResult {
	simCtx, cancel := context.WithTimeout(ctx, o.simulateTO)
	defer cancel()

	res, err := o.simulator.Simulate(simCtx, &simulator.Request{
		From:  user,
		To:    env.Receiver,
		Input: env.Calldata,
		Gas:   o.gasLimit,
	})
	if err != nil {
		return o.failed(runID, req, "simulate", err, logger)
	}

	if !res.Status {
		revert := types.NewSettlementError(types.KindOnChainRevert, "simulate", "%s", res.RevertReason)
		return o.failed(runID, req, "simulate", revert, logger)
	}

	return types.Simulated(runID, req, res.ReportURL, projected, posted)
}

func (o *Orchestrator) settleSubmit(
	ctx context.Context,
	runID string,
	req *types.PositionRequest,
	env *types.FlashLoanEnvelope,
	projected, posted *big.Int,
	logger *zap.Logger,
) *types.SettlementResult {
	submitCtx, cancel := context.WithTimeout(ctx, o.submitTO)
	defer cancel()

	txHash, err := o.submitter.Submit(submitCtx, env)
	if err != nil {
		return o.failed(runID, req, "submit", err, logger)
	}

	return types.Submitted(runID, req, txHash, projected, posted)
}

func (o *Orchestrator) failed(runID string, req *types.PositionRequest, step string, err error, logger *zap.Logger) *types.SettlementResult {
	kind := types.KindOf(err)
	StepErrorsTotal.WithLabelValues(step, string(kind)).Inc()

	logger.Warn("run-failed",
		zap.String("step", step),
		zap.String("kind", string(kind)),
		zap.Error(err))

	return types.Failed(runID, req, err)
}

// record hands the result to the sink. Best-effort: the run's verdict
// stands even when persistence fails.
func (o *Orchestrator) record(result *types.SettlementResult, logger *zap.Logger) {
	if o.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.sink.SaveResult(ctx, result); err != nil {
		logger.Warn("result-not-stored", zap.Error(err))
	}
}
