package workerpool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalIsSingleton(t *testing.T) {
	assert.Same(t, Global(), Global())
}

func TestNewPoolBoundsConcurrency(t *testing.T) {
	p := New(1)
	ctx := context.Background()
	require.NoError(t, p.Acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		_ = p.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should not succeed while pool is full")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire should succeed after release")
	}
}

func TestNewPoolDefaultsCapacityWhenNonPositive(t *testing.T) {
	p := New(0)
	assert.NotNil(t, p)
}
