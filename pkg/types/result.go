package types

import (
	"math/big"
	"time"
)

// SettlementStatus tags the outcome variant of an orchestration run.
type SettlementStatus string

const (
	// StatusSimulated means the bundle was built and simulated; nothing
	// was broadcast on-chain.
	StatusSimulated SettlementStatus = "simulated"
	// StatusSubmitted means the transaction was broadcast.
	StatusSubmitted SettlementStatus = "submitted"
	// StatusRejected means the aggregator refused to quote (no route,
	// amount below threshold); the aggregator's message is preserved.
	StatusRejected SettlementStatus = "rejected"
	// StatusFailed covers every other terminal error.
	StatusFailed SettlementStatus = "failed"
)

// SettlementResult is the classified outcome of one orchestration run.
// Exactly one variant's fields are populated, selected by Status.
type SettlementResult struct {
	RunID       string
	Request     *PositionRequest
	Status      SettlementStatus
	CompletedAt time.Time

	// Simulated
	ReportURL        string
	ProjectedOutput  *big.Int // expected swap proceeds, base units
	PostedCollateral *big.Int // user-supplied collateral, base units

	// Submitted
	TxHash string

	// Rejected
	Reason string

	// Failed
	ErrorKind ErrorKind
	Detail    string
}

// Simulated builds a StatusSimulated result.
func Simulated(runID string, req *PositionRequest, reportURL string, projected, posted *big.Int) *SettlementResult {
	return &SettlementResult{
		RunID:            runID,
		Request:          req,
		Status:           StatusSimulated,
		ReportURL:        reportURL,
		ProjectedOutput:  projected,
		PostedCollateral: posted,
		CompletedAt:      time.Now(),
	}
}

// Submitted builds a StatusSubmitted result.
func Submitted(runID string, req *PositionRequest, txHash string, projected, posted *big.Int) *SettlementResult {
	return &SettlementResult{
		RunID:            runID,
		Request:          req,
		Status:           StatusSubmitted,
		TxHash:           txHash,
		ProjectedOutput:  projected,
		PostedCollateral: posted,
		CompletedAt:      time.Now(),
	}
}

// Rejected builds a StatusRejected result carrying the aggregator's message.
func Rejected(runID string, req *PositionRequest, reason string) *SettlementResult {
	return &SettlementResult{
		RunID:       runID,
		Request:     req,
		Status:      StatusRejected,
		Reason:      reason,
		CompletedAt: time.Now(),
	}
}

// Failed builds a StatusFailed result from a classified error.
func Failed(runID string, req *PositionRequest, err error) *SettlementResult {
	return &SettlementResult{
		RunID:       runID,
		Request:     req,
		Status:      StatusFailed,
		ErrorKind:   KindOf(err),
		Detail:      err.Error(),
		CompletedAt: time.Now(),
	}
}
