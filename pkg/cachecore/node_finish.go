package cachecore

import "context"

// finishNode is the terminal node of every walk. Reaching it with a
// nil node[T] return from step ends the driving loop in Run.
type finishNode[T any] struct {
	value T
	err   error
}

func (n finishNode[T]) step(ctx context.Context, w *walker[T]) node[T] {
	w.result = n.value
	w.err = n.err
	return nil
}
