package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreservesOrder(t *testing.T) {
	inputs := []int{5, 1, 4, 2, 3}
	for _, workers := range []int{0, 1, 3, 10} {
		results := Run(context.Background(), workers, inputs, func(_ context.Context, _ int, in int) (int, error) {
			time.Sleep(time.Duration(in) * time.Millisecond)
			return in * 10, nil
		})
		require.Len(t, results, len(inputs))
		for i, r := range results {
			assert.NoError(t, r.Err)
			assert.Equal(t, inputs[i]*10, r.Value, "workers=%d slot=%d", workers, i)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	inputs := []string{"a", "b", "c"}
	boom := errors.New("boom")
	for _, workers := range []int{1, 3} {
		results := Run(context.Background(), workers, inputs, func(_ context.Context, i int, in string) (string, error) {
			switch i {
			case 1:
				return "", boom
			case 2:
				panic("exploded")
			}
			return in + "!", nil
		})
		require.Len(t, results, 3)
		assert.Equal(t, "a!", results[0].Value)
		assert.ErrorIs(t, results[1].Err, boom)
		assert.False(t, results[1].Panicked)

		var pe *PanicError
		require.ErrorAs(t, results[2].Err, &pe)
		assert.True(t, results[2].Panicked)
		assert.Equal(t, "exploded", pe.Value)
		assert.Equal(t, "panic: exploded", pe.Error())
	}
}

func TestRunRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	inputs := make([]int, 20)
	Run(context.Background(), 3, inputs, func(_ context.Context, _ int, _ int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunEmpty(t *testing.T) {
	results := Run(context.Background(), 4, []int(nil), func(context.Context, int, int) (int, error) {
		t.Fatal("must not be called")
		return 0, nil
	})
	assert.Empty(t, results)
}

func TestValues(t *testing.T) {
	results := []Result[string]{
		{Value: "ok"},
		{Err: errors.New("bad")},
	}
	out := Values(results, func(i int, err error) string {
		return "slot failed: " + err.Error()
	})
	assert.Equal(t, []string{"ok", "slot failed: bad"}, out)
}
