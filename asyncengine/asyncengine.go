// Package asyncengine wraps a sinecache.Engine behind a
// context-cancelable mutual-exclusion gate, so a single cache instance
// can be shared by concurrent callers without any of them blocking
// uninterruptibly on a plain mutex.
package asyncengine

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/sinecache/sinecache"
)

// AsyncEngine serializes access to a wrapped Engine, acquiring a
// weight-1 semaphore before every operation instead of a sync.Mutex so
// acquisition can be canceled via context.
type AsyncEngine[K comparable, V any] struct {
	engine *sinecache.Engine[K, V]
	sem    *semaphore.Weighted
}

// Wrap constructs an AsyncEngine around an already-built Engine.
func Wrap[K comparable, V any](e *sinecache.Engine[K, V]) *AsyncEngine[K, V] {
	return &AsyncEngine[K, V]{engine: e, sem: semaphore.NewWeighted(1)}
}

// New builds an Engine from opt and wraps it.
func New[K comparable, V any](opt sinecache.Options[K, V]) (*AsyncEngine[K, V], error) {
	e, err := sinecache.New[K, V](opt)
	if err != nil {
		return nil, err
	}
	return Wrap(e), nil
}

func (a *AsyncEngine[K, V]) acquire(ctx context.Context) error {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("asyncengine: acquiring access: %w", err)
	}
	return nil
}

func (a *AsyncEngine[K, V]) release() { a.sem.Release(1) }

// Get looks up k, or returns ctx's error if ctx is canceled before
// access is granted.
func (a *AsyncEngine[K, V]) Get(ctx context.Context, k K) (V, bool, error) {
	if err := a.acquire(ctx); err != nil {
		var zero V
		return zero, false, err
	}
	defer a.release()
	v, ok := a.engine.Get(k)
	return v, ok, nil
}

// Put inserts or overwrites k with v.
func (a *AsyncEngine[K, V]) Put(ctx context.Context, k K, v V) error {
	if err := a.acquire(ctx); err != nil {
		return err
	}
	defer a.release()
	return a.engine.Put(k, v)
}

// Remove deletes k if present.
func (a *AsyncEngine[K, V]) Remove(ctx context.Context, k K) (V, bool, error) {
	if err := a.acquire(ctx); err != nil {
		var zero V
		return zero, false, err
	}
	defer a.release()
	return a.engine.Remove(k)
}

// Len reports the number of resident entries.
func (a *AsyncEngine[K, V]) Len(ctx context.Context) (int, error) {
	if err := a.acquire(ctx); err != nil {
		return 0, err
	}
	defer a.release()
	return a.engine.Len(), nil
}

// Contains reports whether k is resident.
func (a *AsyncEngine[K, V]) Contains(ctx context.Context, k K) (bool, error) {
	if err := a.acquire(ctx); err != nil {
		return false, err
	}
	defer a.release()
	return a.engine.Contains(k), nil
}

// Close acquires access one final time, flushes and closes the
// underlying journal if any, and releases. Close must be called
// exactly once. It does not mark the AsyncEngine closed: later calls
// still acquire access and reach the engine, whose journal is closed.
func (a *AsyncEngine[K, V]) Close(ctx context.Context) error {
	if err := a.acquire(ctx); err != nil {
		return err
	}
	defer a.release()
	return a.engine.Close()
}
