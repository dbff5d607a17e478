package merger

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsAllTasks(t *testing.T) {
	pool := NewPool(4, discardLogger())

	var done atomic.Int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			done.Add(1)
		})
	}
	pool.Close()

	if done.Load() != 20 {
		t.Errorf("expected 20 completed tasks, got %d", done.Load())
	}
}

func TestPool_ConcurrencyBound(t *testing.T) {
	const workers = 3
	pool := NewPool(workers, discardLogger())

	var current, peak atomic.Int64
	var mu sync.Mutex

	for i := 0; i < 12; i++ {
		pool.Submit(func() {
			n := current.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
		})
	}
	pool.Close()

	if peak.Load() > workers {
		t.Errorf("concurrency exceeded pool size: peak %d > %d", peak.Load(), workers)
	}
}

func TestPool_RecoverFromPanic(t *testing.T) {
	pool := NewPool(1, discardLogger())

	var after atomic.Bool
	pool.Submit(func() {
		panic("task blew up")
	})
	pool.Submit(func() {
		after.Store(true)
	})
	pool.Close()

	if !after.Load() {
		t.Error("worker should survive a panicking task")
	}
}

func TestPool_CloseWaitsForInFlight(t *testing.T) {
	pool := NewPool(2, discardLogger())

	var done atomic.Bool
	pool.Submit(func() {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
	})
	pool.Close()

	if !done.Load() {
		t.Error("Close should wait for in-flight tasks")
	}
}
