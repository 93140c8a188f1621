// Package predict wraps the external crop, fertilizer, analysis and yield
// services together with the local heuristics used when they fail.
package predict

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Source string

const (
	SourceRemote    Source = "remote"
	SourceHeuristic Source = "heuristic"
)

// Func is one way of producing a T from an In.
type Func[In, T any] func(ctx context.Context, in In) (T, error)

// Result carries the value together with where it came from. Degraded is
// set when the fallback had to stand in for the primary; Cause then holds
// the primary's error.
type Result[T any] struct {
	Value    T
	Source   Source
	Degraded bool
	Cause    error
}

// Policy runs Primary and, if it fails, Fallback exactly once. Neither is
// retried.
type Policy[In, T any] struct {
	Name     string
	Primary  Func[In, T]
	Fallback Func[In, T]
	Log      *zap.Logger
}

func (p Policy[In, T]) Run(ctx context.Context, in In) (Result[T], error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	if p.Primary != nil {
		v, err := p.Primary(ctx, in)
		if err == nil {
			return Result[T]{Value: v, Source: SourceRemote}, nil
		}
		// a cancelled caller gets no fallback
		if ctx.Err() != nil {
			return Result[T]{}, ctx.Err()
		}
		log.Warn("primary failed, using fallback", zap.String("policy", p.Name), zap.Error(err))
		if p.Fallback == nil {
			return Result[T]{}, fmt.Errorf("%s: %w", p.Name, err)
		}
		v, ferr := p.Fallback(ctx, in)
		if ferr != nil {
			return Result[T]{}, fmt.Errorf("%s: fallback failed: %w (primary: %v)", p.Name, ferr, err)
		}
		return Result[T]{Value: v, Source: SourceHeuristic, Degraded: true, Cause: err}, nil
	}

	if p.Fallback == nil {
		return Result[T]{}, fmt.Errorf("%s: no strategy configured", p.Name)
	}
	v, err := p.Fallback(ctx, in)
	if err != nil {
		return Result[T]{}, fmt.Errorf("%s: %w", p.Name, err)
	}
	return Result[T]{Value: v, Source: SourceHeuristic}, nil
}
