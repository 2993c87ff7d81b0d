package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

func TestSnapshotCache_GetRefreshesOnce(t *testing.T) {
	cache := NewSnapshotCache(time.Minute, zap.NewNop())

	calls := 0
	cache.Register("sellers", func(ctx context.Context) ([]syncdomain.Row, error) {
		calls++
		return []syncdomain.Row{{"売主番号": "AA13528"}}, nil
	})

	rows, err := cache.Get(context.Background(), "sellers")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AA13528", rows[0].Get("売主番号"))

	_, err = cache.Get(context.Background(), "sellers")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second read within TTL should be served from cache")
}

func TestSnapshotCache_ExpiryTriggersRefresh(t *testing.T) {
	cache := NewSnapshotCache(time.Millisecond, zap.NewNop())

	calls := 0
	cache.Register("buyers", func(ctx context.Context) ([]syncdomain.Row, error) {
		calls++
		return nil, nil
	})

	_, err := cache.Get(context.Background(), "buyers")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = cache.Get(context.Background(), "buyers")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	cache := NewSnapshotCache(time.Hour, zap.NewNop())

	calls := 0
	cache.Register("sellers", func(ctx context.Context) ([]syncdomain.Row, error) {
		calls++
		return nil, nil
	})

	_, err := cache.Get(context.Background(), "sellers")
	require.NoError(t, err)

	cache.Invalidate("sellers")

	_, err = cache.Get(context.Background(), "sellers")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSnapshotCache_InvalidateAll(t *testing.T) {
	cache := NewSnapshotCache(time.Hour, zap.NewNop())

	sellerCalls, buyerCalls := 0, 0
	cache.Register("sellers", func(ctx context.Context) ([]syncdomain.Row, error) {
		sellerCalls++
		return nil, nil
	})
	cache.Register("buyers", func(ctx context.Context) ([]syncdomain.Row, error) {
		buyerCalls++
		return nil, nil
	})

	_, _ = cache.Get(context.Background(), "sellers")
	_, _ = cache.Get(context.Background(), "buyers")

	cache.InvalidateAll()

	_, _ = cache.Get(context.Background(), "sellers")
	_, _ = cache.Get(context.Background(), "buyers")
	assert.Equal(t, 2, sellerCalls)
	assert.Equal(t, 2, buyerCalls)
}

func TestSnapshotCache_LoaderErrorNotCached(t *testing.T) {
	cache := NewSnapshotCache(time.Hour, zap.NewNop())

	calls := 0
	cache.Register("sellers", func(ctx context.Context) ([]syncdomain.Row, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("quota exceeded")
		}
		return []syncdomain.Row{{"売主番号": "AA1"}}, nil
	})

	_, err := cache.Get(context.Background(), "sellers")
	require.Error(t, err)

	rows, err := cache.Get(context.Background(), "sellers")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSnapshotCache_UnregisteredKey(t *testing.T) {
	cache := NewSnapshotCache(time.Hour, zap.NewNop())

	_, err := cache.Get(context.Background(), "unknown")
	require.Error(t, err)
}
