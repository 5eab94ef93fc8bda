// Package submitter signs and broadcasts the flash-loan transaction.
package submitter

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// Submitter broadcasts fully built envelopes from the operator account.
// Every candidate transaction is preflighted with eth_call first so a
// revert is caught, decoded and reported before anything hits the
// mempool.
type Submitter struct {
	client   *ethclient.Client
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	gasLimit uint64
	logger   *zap.Logger
}

// Config holds submitter construction parameters.
type Config struct {
	Client      *ethclient.Client
	OperatorKey string // hex private key, 0x prefix optional
	ChainID     int64
	GasLimit    uint64 // fallback when estimation fails
	Logger      *zap.Logger
}

// New creates a Submitter for the operator account.
func New(cfg *Config) (*Submitter, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}

	return &Submitter{
		client:   cfg.Client,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  big.NewInt(cfg.ChainID),
		gasLimit: cfg.GasLimit,
		logger:   cfg.Logger,
	}, nil
}

// From returns the operator address transactions are sent from.
func (s *Submitter) From() common.Address {
	return s.from
}

// Submit preflights, signs and broadcasts the envelope's outer call and
// returns the transaction hash.
func (s *Submitter) Submit(ctx context.Context, env *types.FlashLoanEnvelope) (string, error) {
	to := env.Receiver

	msg := ethereum.CallMsg{
		From: s.from,
		To:   &to,
		Data: env.Calldata,
	}

	// Preflight. A revert here never reaches the chain.
	if _, err := s.client.CallContract(ctx, msg, nil); err != nil {
		if reason, ok := DecodeRevert(err); ok {
			return "", types.NewSettlementError(types.KindOnChainRevert, "submit", "%s", reason)
		}
		return "", types.WrapSettlementError(types.KindOnChainRevert, "submit", err)
	}

	gas, err := s.client.EstimateGas(ctx, msg)
	if err != nil || gas == 0 {
		gas = s.gasLimit
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", types.WrapSettlementError(types.KindUpstreamUnavailable, "submit", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return "", types.WrapSettlementError(types.KindUpstreamUnavailable, "submit", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     env.Calldata,
	})

	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(s.chainID), s.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return "", types.WrapSettlementError(types.KindUpstreamUnavailable, "submit", err)
	}

	hash := signed.Hash().Hex()
	s.logger.Info("transaction-submitted",
		zap.String("tx-hash", hash),
		zap.String("to", to.Hex()),
		zap.Uint64("gas", gas),
		zap.Uint64("nonce", nonce))

	return hash, nil
}
