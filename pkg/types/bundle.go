package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RepaymentPlan is the exact amount the pool will require back for a
// flash loan: Premium = floor(Borrowed * rateNum / rateDen), Total =
// Borrowed + Premium. All integer arithmetic; under-repayment must never
// reach the encoder.
type RepaymentPlan struct {
	Borrowed *big.Int
	Premium  *big.Int
	Total    *big.Int
}

// CallStep is one (target, payload) sub-call of an aggregated call.
type CallStep struct {
	Target  common.Address
	Payload []byte
}

// CallBundle is the ordered sub-call sequence executed inside the flash
// loan: swap, then supply, then borrow-to-repay. Order is the atomicity
// contract; later steps spend funds produced by earlier ones.
type CallBundle []CallStep

// FlashLoanEnvelope is the fully encoded flash-loan-initiation call.
//
// InitiatorParams is the ABI-encoded CallBundle handed to the receiver
// contract via the params argument; Calldata is the complete
// startFlashLoan(asset, amount, params) payload for the outer
// transaction.
type FlashLoanEnvelope struct {
	Asset           common.Address // flash-loaned token
	Amount          *big.Int       // flash-loaned amount, base units
	InitiatorParams []byte
	Receiver        common.Address // flash-loan receiver contract
	Calldata        []byte
	Bundle          CallBundle
}
