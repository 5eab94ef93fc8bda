package types

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// PositionRequest is the caller's input for opening a leveraged position:
// supply collateralAmount of CollateralToken, flash-borrow BorrowAmount of
// BorrowToken, swap the borrowed coin into extra collateral and borrow the
// repayment back, all inside one transaction.
//
// Amounts are human-decimal strings ("1.5", "1000"); conversion to base
// units happens after token decimals are known. The request is immutable
// once accepted and lives only for a single orchestration run.
type PositionRequest struct {
	CollateralToken  string
	BorrowToken      string
	CollateralAmount string
	BorrowAmount     string
	UserAddress      string
}

// Validate rejects malformed requests before any network call is made.
func (r *PositionRequest) Validate() error {
	if !common.IsHexAddress(r.CollateralToken) {
		return NewSettlementError(KindInvalidRequest, "validate", "collateral token is not a valid address: %q", r.CollateralToken)
	}

	if !common.IsHexAddress(r.BorrowToken) {
		return NewSettlementError(KindInvalidRequest, "validate", "borrow token is not a valid address: %q", r.BorrowToken)
	}

	if strings.EqualFold(r.CollateralToken, r.BorrowToken) {
		return NewSettlementError(KindInvalidRequest, "validate", "collateral and borrow token must differ")
	}

	if !common.IsHexAddress(r.UserAddress) {
		return NewSettlementError(KindInvalidRequest, "validate", "user address is not a valid address: %q", r.UserAddress)
	}

	if err := validateAmount("collateral amount", r.CollateralAmount); err != nil {
		return err
	}

	return validateAmount("borrow amount", r.BorrowAmount)
}

func validateAmount(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return NewSettlementError(KindInvalidRequest, "validate", "%s is empty", field)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return NewSettlementError(KindInvalidRequest, "validate", "%s is not numeric: %q", field, raw)
	}

	if d.Sign() <= 0 {
		return NewSettlementError(KindInvalidRequest, "validate", "%s must be strictly positive: %q", field, raw)
	}

	return nil
}

// TokenMeta describes a deployed ERC-20 token. Decimals never change for
// a deployed token, so metadata is cacheable indefinitely per address.
type TokenMeta struct {
	Address  common.Address
	Decimals uint8
}
