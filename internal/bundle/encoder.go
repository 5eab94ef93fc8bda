package bundle

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// Variable-rate borrowing, per the pool's interest rate mode convention.
var interestRateModeVariable = big.NewInt(2)

// Encoder assembles the ordered swap/supply/borrow call bundle and wraps
// it as the flash-loan-initiation payload.
type Encoder struct {
	poolRouter   common.Address
	receiver     common.Address
	referralCode uint16
	abis         *contractABIs
	logger       *zap.Logger
}

// EncoderConfig holds encoder construction parameters.
type EncoderConfig struct {
	PoolRouter   common.Address // lending pool router (supply/borrow target)
	Receiver     common.Address // flash-loan receiver contract
	ReferralCode uint16
	Logger       *zap.Logger
}

// NewEncoder creates a call bundle encoder.
func NewEncoder(cfg *EncoderConfig) (*Encoder, error) {
	abis, err := parseABIs()
	if err != nil {
		return nil, err
	}

	return &Encoder{
		poolRouter:   cfg.PoolRouter,
		receiver:     cfg.Receiver,
		referralCode: cfg.ReferralCode,
		abis:         abis,
		logger:       cfg.Logger,
	}, nil
}

// EncodeParams carries everything one Encode call needs. All amounts are
// base units.
type EncodeParams struct {
	CollateralToken  common.Address
	BorrowToken      common.Address
	UserAddress      common.Address
	CollateralAmount *big.Int // collateral the user posts themselves
	BorrowedAmount   *big.Int // flash-loaned amount, consumed by the swap
	Quote            *types.SwapQuote
	Plan             *types.RepaymentPlan
}

// Encode produces the FlashLoanEnvelope for one position. The bundle
// always holds exactly three steps in this order:
//
//  1. swap the flash-loaned coin into collateral (aggregator router,
//     opaque payload passed through verbatim);
//  2. supply posted collateral plus swap proceeds to the pool on behalf
//     of the user;
//  3. borrow the full repayment amount of the flash-loaned coin on
//     behalf of the user, so the loan plus premium can be settled.
//
// Reordering breaks atomicity: each step spends what the previous one
// produced. Inconsistent inputs fail here with BundleInconsistent and are
// never submitted on-chain.
func (e *Encoder) Encode(p *EncodeParams) (*types.FlashLoanEnvelope, error) {
	if err := e.check(p); err != nil {
		return nil, err
	}

	supplyAmount := new(big.Int).Add(p.CollateralAmount, p.Quote.OutputAmount)

	supplyPayload, err := e.abis.pool.Pack("supply",
		p.CollateralToken,
		supplyAmount,
		p.UserAddress,
		e.referralCode,
	)
	if err != nil {
		return nil, fmt.Errorf("pack supply call: %w", err)
	}

	borrowPayload, err := e.abis.pool.Pack("borrow",
		p.BorrowToken,
		p.Plan.Total,
		interestRateModeVariable,
		e.referralCode,
		p.UserAddress,
	)
	if err != nil {
		return nil, fmt.Errorf("pack borrow call: %w", err)
	}

	steps := types.CallBundle{
		{Target: p.Quote.Router, Payload: p.Quote.CallPayload},
		{Target: e.poolRouter, Payload: supplyPayload},
		{Target: e.poolRouter, Payload: borrowPayload},
	}

	params, err := e.packSteps(steps)
	if err != nil {
		return nil, fmt.Errorf("pack call bundle: %w", err)
	}

	calldata, err := e.abis.receiver.Pack("startFlashLoan",
		p.BorrowToken,
		p.BorrowedAmount,
		params,
	)
	if err != nil {
		return nil, fmt.Errorf("pack startFlashLoan call: %w", err)
	}

	e.logger.Debug("bundle-encoded",
		zap.String("asset", p.BorrowToken.Hex()),
		zap.String("flash-amount", p.BorrowedAmount.String()),
		zap.String("supply-amount", supplyAmount.String()),
		zap.String("repay-amount", p.Plan.Total.String()),
		zap.Int("steps", len(steps)))

	return &types.FlashLoanEnvelope{
		Asset:           p.BorrowToken,
		Amount:          new(big.Int).Set(p.BorrowedAmount),
		InitiatorParams: params,
		Receiver:        e.receiver,
		Calldata:        calldata,
		Bundle:          steps,
	}, nil
}

// check enforces the build-time invariants. A violation here means a
// programming fault upstream, not bad user input.
func (e *Encoder) check(p *EncodeParams) error {
	inconsistent := func(format string, args ...any) error {
		return types.NewSettlementError(types.KindBundleInconsistent, "encode", format, args...)
	}

	if p.Quote == nil || p.Plan == nil {
		return inconsistent("quote and plan are required")
	}

	if p.Quote.OutputAmount == nil || p.Quote.OutputAmount.Sign() <= 0 {
		return inconsistent("quote output amount must be strictly positive")
	}

	if len(p.Quote.CallPayload) == 0 {
		return inconsistent("quote call payload is empty")
	}

	if p.CollateralAmount == nil || p.CollateralAmount.Sign() <= 0 {
		return inconsistent("collateral amount must be strictly positive")
	}

	if p.BorrowedAmount == nil || p.BorrowedAmount.Sign() <= 0 {
		return inconsistent("borrowed amount must be strictly positive")
	}

	// The flash-loaned amount is exactly what the swap step consumes.
	if p.Plan.Borrowed == nil || p.BorrowedAmount.Cmp(p.Plan.Borrowed) != 0 {
		return inconsistent("flash loan amount %s does not match planned borrow %s",
			p.BorrowedAmount, p.Plan.Borrowed)
	}

	// The borrow step must cover principal plus premium in full.
	required := new(big.Int).Add(p.Plan.Borrowed, p.Plan.Premium)
	if p.Plan.Total == nil || p.Plan.Total.Cmp(required) < 0 {
		return inconsistent("planned repayment %s is below principal+premium %s",
			p.Plan.Total, required)
	}

	return nil
}

func (e *Encoder) packSteps(steps types.CallBundle) ([]byte, error) {
	calls := make([]struct {
		Target  common.Address
		Payload []byte
	}, len(steps))

	for i, s := range steps {
		calls[i].Target = s.Target
		calls[i].Payload = s.Payload
	}

	return e.abis.calls.Pack(calls)
}
