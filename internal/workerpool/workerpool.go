// Package workerpool provides the single process-lifetime worker pool
// shared by every synchronous entry point (spec §5: "global worker pool:
// shared, process-lifetime"). Go has no async/await split to bridge, so
// this is simply a bounded semaphore lazily constructed once and never
// torn down; syncapi acquires a slot before running a blocking call.
package workerpool

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many blocking extraction calls run concurrently.
type Pool struct {
	sem *semaphore.Weighted
}

// Acquire blocks until a slot is available or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error { return p.sem.Acquire(ctx, 1) }

// Release frees a previously acquired slot.
func (p *Pool) Release() { p.sem.Release(1) }

var (
	global     *Pool
	globalOnce sync.Once
)

// Global returns the process-wide worker pool, sized at cpu_count x 2 to
// match model.DefaultConfig's MaxConcurrentExtractions default, lazily
// constructed on first use (spec §3, §5).
func Global() *Pool {
	globalOnce.Do(func() {
		global = &Pool{sem: semaphore.NewWeighted(int64(runtime.NumCPU() * 2))}
	})
	return global
}

// New constructs a private pool with a caller-chosen capacity, for tests or
// callers that need isolation from the process-wide singleton.
func New(capacity int) *Pool {
	if capacity <= 0 {
		capacity = runtime.NumCPU() * 2
	}
	return &Pool{sem: semaphore.NewWeighted(int64(capacity))}
}
