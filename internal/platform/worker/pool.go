package worker

import (
	"context"
	"fmt"
	"sync"
)

const defaultPoolSize = 4

// Pool bounds the number of concurrently running jobs.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool with the given number of slots (4 when size <= 0).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = defaultPoolSize
	}

	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Do runs fn once a slot is free. It returns early if ctx is canceled while waiting.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("waiting for worker slot: %w", ctx.Err())
	}

	defer func() { <-p.slots }()

	return fn(ctx)
}

// Map applies fn to every item using the pool and returns the results in input order.
// It stops scheduling new items once ctx is canceled and returns the context error.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, item T) R) ([]R, error) {
	results := make([]R, len(items))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i, item := range items {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := p.Do(ctx, func(ctx context.Context) error {
				results[i] = fn(ctx, item)
				return nil
			})
			if err != nil {
				errOnce.Do(func() { firstErr = err })
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return results, nil
}
