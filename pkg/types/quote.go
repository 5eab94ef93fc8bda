package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SwapQuote is a normalized quote from the swap aggregator.
//
// CallPayload is opaque calldata for the aggregator's router and must be
// passed through verbatim. Nothing outside the aggregator understands its
// layout; inspecting or mutating it here is a layering violation.
type SwapQuote struct {
	OutputAmount *big.Int       // expected swap proceeds, base units
	Router       common.Address // contract the swap step must call
	CallPayload  []byte
	FetchedAt    time.Time
}
