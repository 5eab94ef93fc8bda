package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage connects and creates a PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{db: db, logger: cfg.Logger}, nil
}

// NewPostgresStorageWithDB wraps an existing connection, used by tests.
func NewPostgresStorageWithDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

// SaveResult inserts one settlement result row.
func (p *PostgresStorage) SaveResult(ctx context.Context, result *types.SettlementResult) error {
	query := `
		INSERT INTO settlement_results (
			run_id, status, user_address, collateral_token, borrow_token,
			collateral_amount, borrow_amount, projected_output,
			report_url, tx_hash, reason, error_kind, detail, completed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	var user, collateralToken, borrowToken, collateralAmount, borrowAmount string
	if result.Request != nil {
		user = result.Request.UserAddress
		collateralToken = result.Request.CollateralToken
		borrowToken = result.Request.BorrowToken
		collateralAmount = result.Request.CollateralAmount
		borrowAmount = result.Request.BorrowAmount
	}

	var projected string
	if result.ProjectedOutput != nil {
		projected = result.ProjectedOutput.String()
	}

	_, err := p.db.ExecContext(ctx, query,
		result.RunID,
		string(result.Status),
		user,
		collateralToken,
		borrowToken,
		collateralAmount,
		borrowAmount,
		projected,
		result.ReportURL,
		result.TxHash,
		result.Reason,
		string(result.ErrorKind),
		result.Detail,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement result: %w", err)
	}

	p.logger.Debug("settlement-result-stored",
		zap.String("run-id", result.RunID),
		zap.String("status", string(result.Status)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
