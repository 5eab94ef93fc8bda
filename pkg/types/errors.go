package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies settlement failures so the HTTP layer can tell
// "your input was bad" apart from "the route is unavailable" and
// "the transaction would revert on-chain".
type ErrorKind string

const (
	KindInvalidRequest      ErrorKind = "INVALID_REQUEST"
	KindInvalidAmount       ErrorKind = "INVALID_AMOUNT"
	KindQuoteUnavailable    ErrorKind = "QUOTE_UNAVAILABLE"
	KindQuoteRejected       ErrorKind = "QUOTE_REJECTED"
	KindQuoteMalformed      ErrorKind = "QUOTE_MALFORMED"
	KindBundleInconsistent  ErrorKind = "BUNDLE_INCONSISTENT"
	KindUpstreamTimeout     ErrorKind = "UPSTREAM_TIMEOUT"
	KindUpstreamUnavailable ErrorKind = "UPSTREAM_UNAVAILABLE"
	KindOnChainRevert       ErrorKind = "ONCHAIN_REVERT"
	KindInternal            ErrorKind = "INTERNAL"
)

// SettlementError is the error type carried across the orchestration
// pipeline. Step names which component failed (quote, plan, encode,
// simulate, submit) so callers get enough context without retrying here.
type SettlementError struct {
	Kind    ErrorKind
	Step    string
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *SettlementError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Step, e.Message, e.Kind)
	}

	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

// NewSettlementError creates a SettlementError without a wrapped cause.
func NewSettlementError(kind ErrorKind, step, format string, args ...any) *SettlementError {
	return &SettlementError{
		Kind:    kind,
		Step:    step,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapSettlementError creates a SettlementError wrapping an underlying cause.
func WrapSettlementError(kind ErrorKind, step string, err error) *SettlementError {
	return &SettlementError{
		Kind:    kind,
		Step:    step,
		Message: err.Error(),
		Err:     err,
	}
}

// KindOf extracts the ErrorKind from an error chain.
// Unclassified errors map to KindInternal.
func KindOf(err error) ErrorKind {
	var se *SettlementError
	if errors.As(err, &se) {
		return se.Kind
	}

	return KindInternal
}

// IsCallerFault reports whether the failure was caused by the caller's
// input rather than an upstream or internal problem. The HTTP layer uses
// this to pick between 4xx and 5xx.
func IsCallerFault(kind ErrorKind) bool {
	return kind == KindInvalidRequest || kind == KindInvalidAmount
}
