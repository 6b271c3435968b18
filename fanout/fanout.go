package fanout

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one unit, stored at the unit's input index.
type Result[O any] struct {
	Value O
	Err   error
	// Panicked is set when Err was produced by a recovered panic.
	Panicked bool
}

// Func processes the unit at index i.
type Func[I, O any] func(ctx context.Context, i int, in I) (O, error)

// PanicError wraps a value recovered from a panicking unit.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Run applies fn to every input with at most workers units in flight.
// workers <= 1 runs the units sequentially on the calling goroutine.
// The returned slice always has len(inputs) entries in input order.
func Run[I, O any](ctx context.Context, workers int, inputs []I, fn Func[I, O]) []Result[O] {
	results := make([]Result[O], len(inputs))
	if len(inputs) == 0 {
		return results
	}

	if workers <= 1 {
		for i, in := range inputs {
			results[i] = call(ctx, i, in, fn)
		}
		return results
	}

	// Units never return errors to the group, so one failure cannot cancel the rest.
	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = call(ctx, i, in, fn)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func call[I, O any](ctx context.Context, i int, in I, fn Func[I, O]) (res Result[O]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[O]{Err: &PanicError{Value: r, Stack: debug.Stack()}, Panicked: true}
		}
	}()
	v, err := fn(ctx, i, in)
	return Result[O]{Value: v, Err: err}
}

// Values returns the values of results, substituting onErr(i, err) for failed slots.
func Values[O any](results []Result[O], onErr func(i int, err error) O) []O {
	out := make([]O, len(results))
	for i, r := range results {
		if r.Err != nil {
			out[i] = onErr(i, r.Err)
			continue
		}
		out[i] = r.Value
	}
	return out
}
