// Package units converts human-decimal token amounts to on-chain base
// units and back. All scaling uses exact decimal/big.Int arithmetic,
// never floating point, so the on-chain amount is always exactly the
// amount the caller asked for.
package units

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// ToBaseUnits converts a human-decimal amount string into the token's
// smallest integer representation (amount * 10^decimals).
//
// Policy: an amount with more fractional digits than the token's decimals
// is rejected, not truncated. Silent truncation would desynchronize the
// submitted amount from the intended one.
func ToBaseUnits(human string, decimals uint8) (*big.Int, error) {
	trimmed := strings.TrimSpace(human)
	if trimmed == "" {
		return nil, types.NewSettlementError(types.KindInvalidAmount, "units", "amount is empty")
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, types.NewSettlementError(types.KindInvalidAmount, "units", "amount is not numeric: %q", human)
	}

	if d.Sign() < 0 {
		return nil, types.NewSettlementError(types.KindInvalidAmount, "units", "amount is negative: %q", human)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, types.NewSettlementError(types.KindInvalidAmount, "units",
			"amount %q has more than %d fractional digits", human, decimals)
	}

	return scaled.BigInt(), nil
}

// FromBaseUnits renders an integer base-unit amount as a human-decimal
// string. Exact inverse of ToBaseUnits for all valid inputs.
func FromBaseUnits(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "", types.NewSettlementError(types.KindInvalidAmount, "units", "amount is nil")
	}

	if amount.Sign() < 0 {
		return "", types.NewSettlementError(types.KindInvalidAmount, "units", "amount is negative: %s", amount)
	}

	return decimal.NewFromBigInt(amount, -int32(decimals)).String(), nil
}
