// Package executor runs independently failable tasks under a fixed concurrency cap.
//
// Inputs are dispatched in submission order as slots free up. Every input gets
// exactly one Result, stored at the input's index, so callers correlate results
// by position rather than by arrival order. A failing or panicking task never
// affects the others, and Run returns only once every task has settled.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

var ErrInvalidLimit = errors.New("executor: concurrency limit must be at least 1")

// PanicError carries the value a task panicked with.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("executor: task panicked: %v", e.Value)
}

type Result[T, R any] struct {
	Index int
	Input T
	Value R
	Err   error
}

func (r Result[T, R]) OK() bool { return r.Err == nil }

// Task is the per-input operation.
type Task[T, R any] func(ctx context.Context, input T) (R, error)

// Run executes task once per input with at most limit tasks in flight.
//
// The returned error is non-nil only for setup faults; task errors are reported
// in the matching Result. If ctx ends before an input could be dispatched, that
// input's Result carries ctx.Err() and the task is never called.
func Run[T, R any](ctx context.Context, inputs []T, limit int, task Task[T, R]) ([]Result[T, R], error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if task == nil {
		return nil, errors.New("executor: task is nil")
	}

	results := make([]Result[T, R], len(inputs))
	sem := semaphore.NewWeighted(int64(limit))
	var wg sync.WaitGroup

	for i, input := range inputs {
		results[i].Index = i
		results[i].Input = input

		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Err = err
			continue
		}

		wg.Add(1)
		go func(i int, input T) {
			defer wg.Done()
			defer sem.Release(1)
			results[i].Value, results[i].Err = invoke(ctx, input, task)
		}(i, input)
	}

	wg.Wait()
	return results, nil
}

func invoke[T, R any](ctx context.Context, input T, task Task[T, R]) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return task(ctx, input)
}
