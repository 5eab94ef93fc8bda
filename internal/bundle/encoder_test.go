package bundle

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

var (
	collateralToken = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	borrowToken     = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	poolRouter      = common.HexToAddress("0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2")
	receiverAddr    = common.HexToAddress("0x00000000000000000000000000000000000000AA")
	swapRouter      = common.HexToAddress("0x1111111254EEB25477B68fb85Ed929f73A960582")
	userAddr        = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
)

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()

	enc, err := NewEncoder(&EncoderConfig{
		PoolRouter: poolRouter,
		Receiver:   receiverAddr,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)

	return enc
}

func validParams(t *testing.T) *EncodeParams {
	t.Helper()

	borrowed := big.NewInt(1_000_000_000)
	plan, err := ComputeRepayment(borrowed, DefaultPremiumRate)
	require.NoError(t, err)

	swapOut, ok := new(big.Int).SetString("9500000000000000000", 10)
	require.True(t, ok)

	collateral, ok := new(big.Int).SetString("10000000000000000000", 10)
	require.True(t, ok)

	return &EncodeParams{
		CollateralToken:  collateralToken,
		BorrowToken:      borrowToken,
		UserAddress:      userAddr,
		CollateralAmount: collateral,
		BorrowedAmount:   borrowed,
		Quote: &types.SwapQuote{
			OutputAmount: swapOut,
			Router:       swapRouter,
			CallPayload:  []byte{0xde, 0xad, 0xbe, 0xef},
			FetchedAt:    time.Now(),
		},
		Plan: plan,
	}
}

func TestEncodeBundleOrderingAndContents(t *testing.T) {
	enc := newTestEncoder(t)
	p := validParams(t)

	env, err := enc.Encode(p)
	require.NoError(t, err)

	// Fixed order: swap, supply, borrow.
	require.Len(t, env.Bundle, 3)
	assert.Equal(t, swapRouter, env.Bundle[0].Target)
	assert.Equal(t, poolRouter, env.Bundle[1].Target)
	assert.Equal(t, poolRouter, env.Bundle[2].Target)

	// Swap payload is the aggregator calldata, byte for byte.
	assert.Equal(t, p.Quote.CallPayload, env.Bundle[0].Payload)

	// Supply step carries posted collateral plus swap proceeds.
	wantSupplyAmount := new(big.Int).Add(p.CollateralAmount, p.Quote.OutputAmount)
	wantSupply, err := enc.abis.pool.Pack("supply",
		collateralToken, wantSupplyAmount, userAddr, uint16(0))
	require.NoError(t, err)
	assert.Equal(t, wantSupply, env.Bundle[1].Payload)

	// Borrow step repays principal plus premium in the flash-loaned coin.
	wantBorrow, err := enc.abis.pool.Pack("borrow",
		borrowToken, p.Plan.Total, interestRateModeVariable, uint16(0), userAddr)
	require.NoError(t, err)
	assert.Equal(t, wantBorrow, env.Bundle[2].Payload)

	// Envelope wraps the bundle as startFlashLoan(asset, amount, params).
	assert.Equal(t, borrowToken, env.Asset)
	assert.Equal(t, p.BorrowedAmount.String(), env.Amount.String())
	assert.Equal(t, receiverAddr, env.Receiver)

	wantParams, err := enc.packSteps(env.Bundle)
	require.NoError(t, err)
	assert.Equal(t, wantParams, env.InitiatorParams)

	wantCalldata, err := enc.abis.receiver.Pack("startFlashLoan",
		borrowToken, p.BorrowedAmount, wantParams)
	require.NoError(t, err)
	assert.Equal(t, wantCalldata, env.Calldata)
}

func TestEncodeConservation(t *testing.T) {
	enc := newTestEncoder(t)

	// For a range of borrow amounts, the amount promised by the borrow
	// step always covers the flash-loaned amount plus its premium.
	for _, borrowed := range []int64{1, 1999, 2000, 1_000_000, 1_000_000_000} {
		p := validParams(t)
		p.BorrowedAmount = big.NewInt(borrowed)

		plan, err := ComputeRepayment(p.BorrowedAmount, DefaultPremiumRate)
		require.NoError(t, err)
		p.Plan = plan

		env, err := enc.Encode(p)
		require.NoError(t, err)

		required := new(big.Int).Add(env.Amount, plan.Premium)
		assert.True(t, plan.Total.Cmp(required) >= 0,
			"repayment %s below flash amount + premium %s", plan.Total, required)
	}
}

func TestEncodeInconsistentInputs(t *testing.T) {
	enc := newTestEncoder(t)

	tests := []struct {
		name   string
		mutate func(*EncodeParams)
	}{
		{
			name:   "nil-quote",
			mutate: func(p *EncodeParams) { p.Quote = nil },
		},
		{
			name:   "nil-plan",
			mutate: func(p *EncodeParams) { p.Plan = nil },
		},
		{
			name:   "zero-swap-output",
			mutate: func(p *EncodeParams) { p.Quote.OutputAmount = big.NewInt(0) },
		},
		{
			name:   "empty-swap-payload",
			mutate: func(p *EncodeParams) { p.Quote.CallPayload = nil },
		},
		{
			name:   "zero-collateral",
			mutate: func(p *EncodeParams) { p.CollateralAmount = big.NewInt(0) },
		},
		{
			name:   "zero-borrowed",
			mutate: func(p *EncodeParams) { p.BorrowedAmount = big.NewInt(0) },
		},
		{
			name:   "flash-amount-mismatch",
			mutate: func(p *EncodeParams) { p.BorrowedAmount = big.NewInt(123) },
		},
		{
			name: "under-repayment",
			mutate: func(p *EncodeParams) {
				p.Plan.Total = new(big.Int).Sub(p.Plan.Total, big.NewInt(1))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams(t)
			tt.mutate(p)

			_, err := enc.Encode(p)
			require.Error(t, err)
			assert.Equal(t, types.KindBundleInconsistent, types.KindOf(err))
		})
	}
}

func TestEncodeDeterministicOrder(t *testing.T) {
	enc := newTestEncoder(t)

	// Whatever the input values, step order never changes.
	p := validParams(t)
	first, err := enc.Encode(p)
	require.NoError(t, err)

	p2 := validParams(t)
	p2.CollateralAmount = big.NewInt(1)
	second, err := enc.Encode(p2)
	require.NoError(t, err)

	for _, env := range []*types.FlashLoanEnvelope{first, second} {
		assert.Equal(t, swapRouter, env.Bundle[0].Target)
		assert.Equal(t, poolRouter, env.Bundle[1].Target)
		assert.Equal(t, poolRouter, env.Bundle[2].Target)
	}
}
