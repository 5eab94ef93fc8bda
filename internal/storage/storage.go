// Package storage persists classified settlement results. The sink is
// best-effort: a storage failure is logged by the caller and never fails
// an orchestration run.
package storage

import (
	"context"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// Storage is the interface for recording settlement results.
type Storage interface {
	// SaveResult records one classified run outcome.
	SaveResult(ctx context.Context, result *types.SettlementResult) error

	// Close closes the storage connection.
	Close() error
}
