package parallel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_ResultOrder(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())

	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}

	results := pool.ExecuteFunc(context.Background(), inputs, func(_ context.Context, in int) (int, error) {
		return in * 2, nil
	})

	require.Len(t, results, 100)
	for i, r := range results {
		assert.NoError(t, r.Error)
		assert.Equal(t, i, r.Input)
		assert.Equal(t, i*2, r.Result)
	}
}

func TestWorkerPool_BoundedConcurrency(t *testing.T) {
	const maxWorkers = 3
	pool := NewWorkerPool[int, struct{}](DefaultPoolConfig().WithWorkers(maxWorkers))

	var current, peak int64
	var mu sync.Mutex

	inputs := make([]int, 50)
	pool.ExecuteFunc(context.Background(), inputs, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt64(&current, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&current, -1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak, int64(maxWorkers))
}

func TestWorkerPool_ErrorsReported(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())

	results := pool.ExecuteFunc(context.Background(), []int{1, 2, 3}, func(_ context.Context, in int) (int, error) {
		if in == 2 {
			return 0, fmt.Errorf("boom on %d", in)
		}
		return in, nil
	})

	assert.NoError(t, results[0].Error)
	assert.Error(t, results[1].Error)
	assert.NoError(t, results[2].Error)
}

func TestWorkerPool_EmptyInput(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())
	results := pool.ExecuteFunc(context.Background(), nil, func(_ context.Context, in int) (int, error) {
		return in, nil
	})
	assert.Nil(t, results)
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.GreaterOrEqual(t, cfg.MaxWorkers, 2)
	assert.LessOrEqual(t, cfg.MaxWorkers, 8)
	assert.Equal(t, cfg.MaxWorkers*2, cfg.TaskBufferSize)

	withTimeout := cfg.WithTimeout(time.Second)
	assert.Equal(t, time.Second, withTimeout.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
}
