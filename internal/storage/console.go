package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// ConsoleStorage implements Storage by logging results.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{logger: logger}
}

// SaveResult logs the settlement result.
func (c *ConsoleStorage) SaveResult(ctx context.Context, result *types.SettlementResult) error {
	fields := []zap.Field{
		zap.String("run-id", result.RunID),
		zap.String("status", string(result.Status)),
	}

	if result.Request != nil {
		fields = append(fields,
			zap.String("user", result.Request.UserAddress),
			zap.String("collateral-token", result.Request.CollateralToken),
			zap.String("borrow-token", result.Request.BorrowToken))
	}

	switch result.Status {
	case types.StatusSimulated:
		fields = append(fields, zap.String("report-url", result.ReportURL))
	case types.StatusSubmitted:
		fields = append(fields, zap.String("tx-hash", result.TxHash))
	case types.StatusRejected:
		fields = append(fields, zap.String("reason", result.Reason))
	case types.StatusFailed:
		fields = append(fields,
			zap.String("error-kind", string(result.ErrorKind)),
			zap.String("detail", result.Detail))
	}

	c.logger.Info("settlement-result", fields...)
	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
