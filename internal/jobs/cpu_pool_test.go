package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squares(n int) []WorkUnit[int] {
	units := make([]WorkUnit[int], n)
	for i := range units {
		v := i
		units[i] = WorkUnit[int]{
			ID: fmt.Sprintf("unit-%d", v),
			Task: func(ctx context.Context) (int, error) {
				// Later units finish first so ordering is not incidental.
				time.Sleep(time.Duration(n-v) * time.Millisecond)
				return v * v, nil
			},
		}
	}
	return units
}

func TestRun_InputOrder(t *testing.T) {
	pool := NewCPUPool(CPUPoolConfig{WorkerCount: 4})

	results, err := Run(context.Background(), pool, squares(20))
	require.NoError(t, err)
	require.Len(t, results, 20)

	for i, r := range results {
		assert.True(t, r.Success)
		assert.Equal(t, fmt.Sprintf("unit-%d", i), r.WorkUnitID)
		assert.Equal(t, i*i, r.Output)
	}

	status := pool.Status()
	assert.Equal(t, 20, status.Completed)
	assert.Equal(t, 0, status.InFlight)
}

func TestRun_IsolatesFailures(t *testing.T) {
	pool := NewCPUPool(CPUPoolConfig{WorkerCount: 2})
	boom := errors.New("boom")

	units := []WorkUnit[string]{
		{ID: "ok-1", Task: func(context.Context) (string, error) { return "a", nil }},
		{ID: "err", Task: func(context.Context) (string, error) { return "", boom }},
		{ID: "panic", Task: func(context.Context) (string, error) { panic("bad page") }},
		{ID: "ok-2", Task: func(context.Context) (string, error) { return "b", nil }},
		{ID: "nil"},
	}

	results, err := Run(context.Background(), pool, units)
	require.NoError(t, err)

	assert.True(t, results[0].Success)
	assert.ErrorIs(t, results[1].Error, boom)
	assert.ErrorIs(t, results[2].Error, ErrPanic)
	assert.True(t, results[3].Success)
	assert.Equal(t, "b", results[3].Output)
	assert.Error(t, results[4].Error)

	assert.Equal(t, 3, pool.Status().Failed)
}

func TestRun_StopOnError(t *testing.T) {
	pool := NewCPUPool(CPUPoolConfig{WorkerCount: 1, StopOnError: true})
	boom := errors.New("boom")
	var ran atomic.Int32

	units := []WorkUnit[int]{
		{ID: "first", Task: func(context.Context) (int, error) { ran.Add(1); return 1, nil }},
		{ID: "second", Task: func(context.Context) (int, error) { ran.Add(1); return 0, boom }},
		{ID: "third", Task: func(context.Context) (int, error) { ran.Add(1); return 3, nil }},
	}

	results, err := Run(context.Background(), pool, units)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "second")
	assert.Equal(t, int32(2), ran.Load())
	assert.ErrorIs(t, results[2].Error, ErrNotRun)
}

func TestRun_Cancelled(t *testing.T) {
	pool := NewCPUPool(CPUPoolConfig{WorkerCount: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, pool, squares(3))
	assert.ErrorIs(t, err, context.Canceled)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, ErrNotRun)
	}
}

func TestRun_Empty(t *testing.T) {
	results, err := Run(context.Background(), NewCPUPool(CPUPoolConfig{}), []WorkUnit[int]{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewCPUPool_Defaults(t *testing.T) {
	pool := NewCPUPool(CPUPoolConfig{})
	assert.Equal(t, "cpu", pool.Name())
	assert.Positive(t, pool.Status().Workers)
}
