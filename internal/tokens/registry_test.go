package tokens

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/cache"
)

type stubFetcher struct {
	decimals uint8
	err      error
	calls    atomic.Int64
}

func (s *stubFetcher) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	s.calls.Add(1)
	return s.decimals, s.err
}

func newTestRegistry(t *testing.T, fetcher DecimalsFetcher) (*Registry, *cache.RistrettoCache) {
	t.Helper()

	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return NewRegistry(fetcher, c, zap.NewNop()), c.(*cache.RistrettoCache)
}

func TestMetaFetchesOnceThenCaches(t *testing.T) {
	fetcher := &stubFetcher{decimals: 18}
	reg, rc := newTestRegistry(t, fetcher)

	token := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	meta, err := reg.Meta(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), meta.Decimals)
	assert.Equal(t, token, meta.Address)
	assert.Equal(t, int64(1), fetcher.calls.Load())

	rc.Wait()

	meta, err = reg.Meta(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), meta.Decimals)
	assert.Equal(t, int64(1), fetcher.calls.Load(), "second lookup served from cache")
}

func TestMetaFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: assert.AnError}
	reg, _ := newTestRegistry(t, fetcher)

	_, err := reg.Meta(context.Background(), common.HexToAddress("0x01"))
	require.Error(t, err)
}

func TestMetaConcurrentPopulate(t *testing.T) {
	fetcher := &stubFetcher{decimals: 6}
	reg, _ := newTestRegistry(t, fetcher)

	token := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meta, err := reg.Meta(context.Background(), token)
			assert.NoError(t, err)
			assert.Equal(t, uint8(6), meta.Decimals)
		}()
	}
	wg.Wait()
}
