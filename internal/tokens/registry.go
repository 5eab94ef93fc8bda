// Package tokens resolves ERC-20 token metadata with a process-wide
// cache. Decimals for a deployed token never change, so cached entries
// never expire and concurrent population is idempotent.
package tokens

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/cache"
	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

const decimalsABI = `[{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}]`

// DecimalsFetcher fetches a token's decimals from the chain.
type DecimalsFetcher interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// EthFetcher reads decimals() via eth_call.
type EthFetcher struct {
	client *ethclient.Client
	abi    abi.ABI
}

// NewEthFetcher creates a DecimalsFetcher backed by an RPC node.
func NewEthFetcher(client *ethclient.Client) (*EthFetcher, error) {
	parsed, err := abi.JSON(strings.NewReader(decimalsABI))
	if err != nil {
		return nil, fmt.Errorf("parse decimals ABI: %w", err)
	}

	return &EthFetcher{client: client, abi: parsed}, nil
}

// Decimals reads the token's decimals from the contract.
func (f *EthFetcher) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := f.abi.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals call: %w", err)
	}

	result, err := f.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		return 0, types.WrapSettlementError(types.KindUpstreamUnavailable, "tokens", err)
	}

	v := new(big.Int).SetBytes(result)
	if !v.IsUint64() || v.Uint64() > 255 {
		return 0, types.NewSettlementError(types.KindInternal, "tokens",
			"token %s reports out-of-range decimals %s", token.Hex(), v)
	}

	return uint8(v.Uint64()), nil
}

// Registry resolves TokenMeta through the cache.
type Registry struct {
	fetcher DecimalsFetcher
	cache   cache.Cache
	logger  *zap.Logger
}

// NewRegistry creates a token metadata registry.
func NewRegistry(fetcher DecimalsFetcher, c cache.Cache, logger *zap.Logger) *Registry {
	return &Registry{
		fetcher: fetcher,
		cache:   c,
		logger:  logger,
	}
}

// Meta returns the token's metadata, fetching decimals on first use.
// Cache writes never expire; repeated population with the same value is
// safe without locking.
func (r *Registry) Meta(ctx context.Context, token common.Address) (types.TokenMeta, error) {
	key := strings.ToLower(token.Hex())

	if v, found := r.cache.Get(key); found {
		if decimals, ok := v.(uint8); ok {
			return types.TokenMeta{Address: token, Decimals: decimals}, nil
		}
	}

	decimals, err := r.fetcher.Decimals(ctx, token)
	if err != nil {
		return types.TokenMeta{}, fmt.Errorf("fetch decimals for %s: %w", token.Hex(), err)
	}

	r.cache.Set(key, decimals, 0)
	r.logger.Debug("token-meta-resolved",
		zap.String("token", token.Hex()),
		zap.Uint8("decimals", decimals))

	return types.TokenMeta{Address: token, Decimals: decimals}, nil
}
