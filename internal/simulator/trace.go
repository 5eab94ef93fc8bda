package simulator

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

var txHashPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)

// ValidTxHash reports whether s looks like a transaction hash.
func ValidTxHash(s string) bool {
	return txHashPattern.MatchString(s)
}

// ErrTxNotFound is returned when the node does not know the transaction.
var ErrTxNotFound = errors.New("transaction not found")

// TraceReport is the analysis of one mined transaction.
type TraceReport struct {
	TxHash      string          `json:"txHash"`
	From        string          `json:"from"`
	To          string          `json:"to,omitempty"`
	GasUsed     uint64          `json:"gasUsed,omitempty"`
	Status      *bool           `json:"status,omitempty"`
	BlockNumber uint64          `json:"blockNumber,omitempty"`
	Trace       json.RawMessage `json:"trace,omitempty"`
}

// TraceClient analyzes mined transactions through the gateway node,
// including the gateway's execution trace when the node offers one.
type TraceClient struct {
	client *ethclient.Client
	logger *zap.Logger
}

// NewTraceClient creates a trace client on an existing node connection.
func NewTraceClient(client *ethclient.Client, logger *zap.Logger) *TraceClient {
	return &TraceClient{client: client, logger: logger}
}

// Trace fetches the transaction, its receipt and, where available, the
// gateway's execution trace. An unavailable trace is not an error; the
// report simply omits it.
func (t *TraceClient) Trace(ctx context.Context, txHash string) (*TraceReport, error) {
	if !ValidTxHash(txHash) {
		return nil, fmt.Errorf("invalid transaction hash format: %q", txHash)
	}

	hash := common.HexToHash(txHash)

	tx, _, err := t.client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, ErrTxNotFound
		}
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}

	report := &TraceReport{TxHash: txHash}
	if to := tx.To(); to != nil {
		report.To = to.Hex()
	}

	signer := ethtypes.LatestSignerForChainID(tx.ChainId())
	if sender, err := ethtypes.Sender(signer, tx); err == nil {
		report.From = sender.Hex()
	}

	receipt, err := t.client.TransactionReceipt(ctx, hash)
	if err == nil && receipt != nil {
		ok := receipt.Status == 1
		report.Status = &ok
		report.GasUsed = receipt.GasUsed
		if receipt.BlockNumber != nil {
			report.BlockNumber = receipt.BlockNumber.Uint64()
		}
	}

	var trace json.RawMessage
	err = t.client.Client().CallContext(ctx, &trace, "tenderly_traceTransaction", txHash)
	if err != nil {
		// Trace support depends on the gateway; absence is non-fatal.
		t.logger.Warn("trace-not-available",
			zap.String("tx-hash", txHash),
			zap.Error(err))
	} else {
		report.Trace = trace
	}

	return report, nil
}
