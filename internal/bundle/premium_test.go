package bundle

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

func TestComputeRepayment(t *testing.T) {
	tests := []struct {
		name        string
		borrowed    string
		rate        PremiumRate
		wantPremium string
		wantTotal   string
		wantErr     bool
	}{
		{
			name:        "five-bps-on-1e9",
			borrowed:    "1000000000",
			rate:        PremiumRate{Num: 5, Den: 10_000},
			wantPremium: "500000",
			wantTotal:   "1000500000",
		},
		{
			name:        "floor-division-not-rounding",
			borrowed:    "1999",
			rate:        PremiumRate{Num: 5, Den: 10_000},
			wantPremium: "0", // 1999*5/10000 = 0.9995, floors to 0
			wantTotal:   "1999",
		},
		{
			name:        "premium-of-one",
			borrowed:    "2000",
			rate:        PremiumRate{Num: 5, Den: 10_000},
			wantPremium: "1",
			wantTotal:   "2001",
		},
		{
			// checked against the independent recomputation below only
			name:     "large-amount-no-overflow",
			borrowed: "115792089237316195423570985008687907853269984665640564039457",
			rate:     PremiumRate{Num: 9, Den: 10_000},
		},
		{
			name:     "zero-borrowed",
			borrowed: "0",
			rate:     DefaultPremiumRate,
			wantErr:  true,
		},
		{
			name:     "negative-borrowed",
			borrowed: "-5",
			rate:     DefaultPremiumRate,
			wantErr:  true,
		},
		{
			name:     "zero-denominator",
			borrowed: "1000",
			rate:     PremiumRate{Num: 5, Den: 0},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			borrowed, ok := new(big.Int).SetString(tt.borrowed, 10)
			require.True(t, ok)

			plan, err := ComputeRepayment(borrowed, tt.rate)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.borrowed, plan.Borrowed.String())

			// Recompute independently: premium must be exact floor division
			// and total must conserve principal plus premium.
			wantPremium := new(big.Int).Mul(borrowed, new(big.Int).SetUint64(tt.rate.Num))
			wantPremium.Div(wantPremium, new(big.Int).SetUint64(tt.rate.Den))
			assert.Equal(t, wantPremium.String(), plan.Premium.String())

			wantTotal := new(big.Int).Add(borrowed, wantPremium)
			assert.Equal(t, wantTotal.String(), plan.Total.String())

			if tt.wantPremium != "" {
				assert.Equal(t, tt.wantPremium, plan.Premium.String())
				assert.Equal(t, tt.wantTotal, plan.Total.String())
			}
		})
	}
}

func TestComputeRepaymentDoesNotMutateInput(t *testing.T) {
	borrowed := big.NewInt(1_000_000_000)

	_, err := ComputeRepayment(borrowed, DefaultPremiumRate)
	require.NoError(t, err)
	assert.Equal(t, "1000000000", borrowed.String())
}

func TestStaticPremium(t *testing.T) {
	src := NewStaticPremium(PremiumRate{Num: 9, Den: 10_000})

	rate, err := src.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(9), rate.Num)
	assert.Equal(t, uint64(10_000), rate.Den)
}

func TestComputeRepaymentErrorKind(t *testing.T) {
	_, err := ComputeRepayment(big.NewInt(0), DefaultPremiumRate)
	require.Error(t, err)
	assert.Equal(t, types.KindInvalidAmount, types.KindOf(err))
}
