// Package pipeline defines the stage abstraction and the data passed
// between the pack, persist, unpack and verify stages.
package pipeline

import "context"

// Stage is one step of an encode or decode run.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a function to Stage. Tests use it to inject failures.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
