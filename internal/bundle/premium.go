// Package bundle computes flash-loan repayment plans and encodes the
// atomic call bundle that opens a leveraged position.
package bundle

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// PremiumRate is the pool's flash-loan premium as an exact rational,
// e.g. 5/10000 = 0.05%.
type PremiumRate struct {
	Num uint64
	Den uint64
}

// DefaultPremiumRate matches Aave v3's launch configuration. The live
// value is a pool parameter and can change between deployments; use
// PremiumFetcher or configuration to override.
var DefaultPremiumRate = PremiumRate{Num: 5, Den: 10_000}

// ComputeRepayment computes the exact amount the pool will require back:
// premium = floor(borrowed * num / den), total = borrowed + premium.
// Pure integer arithmetic; big.Int avoids overflow for any token amount.
func ComputeRepayment(borrowed *big.Int, rate PremiumRate) (*types.RepaymentPlan, error) {
	if borrowed == nil || borrowed.Sign() <= 0 {
		return nil, types.NewSettlementError(types.KindInvalidAmount, "plan",
			"borrowed amount must be strictly positive")
	}

	if rate.Den == 0 {
		return nil, types.NewSettlementError(types.KindInternal, "plan",
			"premium rate denominator is zero")
	}

	premium := new(big.Int).Mul(borrowed, new(big.Int).SetUint64(rate.Num))
	premium.Div(premium, new(big.Int).SetUint64(rate.Den))

	return &types.RepaymentPlan{
		Borrowed: new(big.Int).Set(borrowed),
		Premium:  premium,
		Total:    new(big.Int).Add(borrowed, premium),
	}, nil
}

// flashLoanPremiumABI reads the pool's current total premium in basis
// points.
const flashLoanPremiumABI = `[{"inputs":[],"name":"FLASHLOAN_PREMIUM_TOTAL","outputs":[{"internalType":"uint128","name":"","type":"uint128"}],"stateMutability":"view","type":"function"}]`

// PremiumSource yields the premium rate to plan a run with.
type PremiumSource interface {
	Rate(ctx context.Context) (PremiumRate, error)
}

// StaticPremium is a PremiumSource returning an injected rate. Fast, but
// the operator must keep it in sync with the pool configuration.
type StaticPremium struct {
	rate PremiumRate
}

// NewStaticPremium creates a PremiumSource for a fixed rate.
func NewStaticPremium(rate PremiumRate) *StaticPremium {
	return &StaticPremium{rate: rate}
}

// Rate returns the injected rate.
func (s *StaticPremium) Rate(ctx context.Context) (PremiumRate, error) {
	return s.rate, nil
}

// PremiumFetcher reads FLASHLOAN_PREMIUM_TOTAL from the pool per run.
// Authoritative but costs one eth_call per request.
type PremiumFetcher struct {
	client *ethclient.Client
	pool   common.Address
	abi    abi.ABI
	logger *zap.Logger
}

// NewPremiumFetcher creates a PremiumSource backed by the pool contract.
func NewPremiumFetcher(client *ethclient.Client, pool common.Address, logger *zap.Logger) (*PremiumFetcher, error) {
	parsed, err := abi.JSON(strings.NewReader(flashLoanPremiumABI))
	if err != nil {
		return nil, fmt.Errorf("parse premium ABI: %w", err)
	}

	return &PremiumFetcher{
		client: client,
		pool:   pool,
		abi:    parsed,
		logger: logger,
	}, nil
}

// Rate fetches the pool's current premium. The pool reports basis
// points, so the denominator is fixed at 10000.
func (f *PremiumFetcher) Rate(ctx context.Context) (PremiumRate, error) {
	data, err := f.abi.Pack("FLASHLOAN_PREMIUM_TOTAL")
	if err != nil {
		return PremiumRate{}, fmt.Errorf("pack premium call: %w", err)
	}

	result, err := f.client.CallContract(ctx, ethereum.CallMsg{
		To:   &f.pool,
		Data: data,
	}, nil)
	if err != nil {
		return PremiumRate{}, types.WrapSettlementError(types.KindUpstreamUnavailable, "plan", err)
	}

	bps := new(big.Int).SetBytes(result)
	if !bps.IsUint64() {
		return PremiumRate{}, types.NewSettlementError(types.KindInternal, "plan",
			"pool premium out of range: %s", bps)
	}

	rate := PremiumRate{Num: bps.Uint64(), Den: 10_000}
	f.logger.Debug("premium-fetched",
		zap.String("pool", f.pool.Hex()),
		zap.Uint64("premium-bps", rate.Num))

	return rate, nil
}
