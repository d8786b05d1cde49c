package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_DefaultSize(t *testing.T) {
	assert.Equal(t, defaultPoolSize, NewPool(0).Size())
	assert.Equal(t, 2, NewPool(2).Size())
}

func TestMap_PreservesOrder(t *testing.T) {
	pool := NewPool(3)

	items := []int{5, 4, 3, 2, 1}

	results, err := Map(context.Background(), pool, items, func(_ context.Context, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})

	require.NoError(t, err)
	assert.Equal(t, []int{50, 40, 30, 20, 10}, results)
}

func TestMap_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2)

	var (
		current atomic.Int32
		peak    atomic.Int32
	)

	items := make([]int, 10)

	_, err := Map(context.Background(), pool, items, func(_ context.Context, _ int) struct{} {
		n := current.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}

		time.Sleep(2 * time.Millisecond)
		current.Add(-1)

		return struct{}{}
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoolDo_CanceledWhileWaiting(t *testing.T) {
	pool := NewPool(1)

	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = pool.Do(context.Background(), func(context.Context) error {
			close(started)
			<-release

			return nil
		})
	}()

	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pool.Do(ctx, func(context.Context) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
}
