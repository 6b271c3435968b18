package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/codenexus/component"
	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/logger"
)

// panicPipeline blows up in Process, outside any adapter boundary.
type panicPipeline struct {
	*Instance
}

func (panicPipeline) Format() string { return "panic" }

func (panicPipeline) Process(context.Context, any) string { panic("adapter exploded") }

func newTestManager(workers int) *Manager {
	return NewManager(WithWorkers(workers), WithManagerLogger(logger.NewNop()), WithManagerMetrics(nil))
}

func TestManagerProcessDataIsolation(t *testing.T) {
	for _, workers := range []int{1, 3} {
		m := newTestManager(workers)
		m.AddPipeline(NewJSONAdapter("JSON_001", quiet...))
		m.AddPipeline(panicPipeline{NewInstance("BROKEN_001", quiet...)})
		m.AddPipeline(NewStreamAdapter("STREAM_001", quiet...))

		reports := m.ProcessData(context.Background(), map[string]any{"sensor": "temp"})
		require.Len(t, reports, 3)
		assert.True(t, IsOutputReport(reports[0]))
		assert.Equal(t, "[ERROR] Pipeline BROKEN_001 failed: panic: adapter exploded", reports[1])
		assert.Equal(t, "[ERROR] Stream parsing failed: expected numeric sequence, got map[string]interface {}", reports[2])

		stats := m.Stats()
		assert.Equal(t, 3, stats.TotalPipelines)
		assert.EqualValues(t, 2, stats.Processed)
		assert.EqualValues(t, 1, stats.Errors)
		assert.EqualValues(t, 0, stats.Chained)
	}
}

func TestManagerChainPipelines(t *testing.T) {
	m := newTestManager(1)
	m.AddPipeline(NewJSONAdapter("A", quiet...))
	m.AddPipeline(NewCSVAdapter("B", ',', quiet...))
	m.AddPipeline(NewStreamAdapter("C", quiet...))

	out, err := m.ChainPipelines(context.Background(), Mapping{{Key: "sensor", Value: "temp"}, {Key: "value", Value: 23.5}})
	require.NoError(t, err)
	// Each chain after the first receives the previous report as text.
	assert.Equal(t, "[OUTPUT] Text processed successfully\n  Summary : Text with 16 words\n  Words   : 16\n  Chars   : 98", out)
	assert.EqualValues(t, 3, m.Stats().Chained)
	assert.EqualValues(t, 0, m.Stats().Errors)
}

func TestManagerChainStopsAtFatal(t *testing.T) {
	boom := errors.New("unrecoverable")
	m := newTestManager(1)
	first := NewJSONAdapter("A", quiet...)
	m.AddPipeline(first)
	m.AddPipeline(NewJSONAdapter("B", append([]Option{WithStages(failingStage(boom))}, quiet...)...))
	third := NewJSONAdapter("C", quiet...)
	m.AddPipeline(third)

	in := map[string]any{"a": 1, "b": 2}
	want, err := NewJSONAdapter("REF", quiet...).RunStages(context.Background(), in)
	require.NoError(t, err)

	out, err := m.ChainPipelines(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeChainFatal))
	assert.Equal(t, want, out)

	stats := m.Stats()
	assert.EqualValues(t, 1, stats.Chained)
	assert.EqualValues(t, 1, stats.Errors)
	assert.EqualValues(t, 0, third.Stats().StagesRun)
}

func TestManagerChainRecoversPipelinePanic(t *testing.T) {
	m := newTestManager(1)
	m.AddPipeline(chainPanicPipeline{NewInstance("P", quiet...)})

	out, err := m.ChainPipelines(context.Background(), "seed")
	require.Error(t, err)
	assert.Equal(t, "seed", out)
	assert.EqualValues(t, 1, m.Stats().Errors)
}

type chainPanicPipeline struct {
	*Instance
}

func (chainPanicPipeline) Format() string                      { return "panic" }
func (chainPanicPipeline) Process(context.Context, any) string { return "" }
func (chainPanicPipeline) RunStages(context.Context, any) (any, error) {
	panic("chain exploded")
}

func TestSimulateErrorRecovery(t *testing.T) {
	m := newTestManager(1)
	out := m.SimulateErrorRecovery(context.Background(), map[string]any{"sensor": "temp"})
	assert.Equal(t, "Error detected in Stage 2: invalid data format\n"+
		"Recovery initiated: Switching to backup processor\n"+
		"Recovery successful: Pipeline restored, processing resumed", out)
	assert.EqualValues(t, 1, m.Stats().Errors)
	assert.EqualValues(t, 0, m.Stats().Processed)
	assert.True(t, errors.Is(simulatedFailure(), ErrInvalidDataFormat))
}

func TestManagerLookup(t *testing.T) {
	m := newTestManager(0)
	m.AddPipeline(NewJSONAdapter("JSON_001", quiet...))

	p, ok := m.Pipeline("JSON_001")
	require.True(t, ok)
	assert.Equal(t, FormatJSON, p.Format())

	_, ok = m.Pipeline("missing")
	assert.False(t, ok)
	assert.Len(t, m.PipelineStats(), 1)
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(2)

	assert.True(t, apperrors.HasCode(m.Start(ctx), apperrors.ErrCodeInvalidConfig))
	assert.Equal(t, component.StatusUnhealthy, m.Health(ctx).Status)

	m.AddPipeline(NewJSONAdapter("JSON_001", quiet...))
	require.NoError(t, m.Start(ctx))
	h := m.Health(ctx)
	assert.Equal(t, component.StatusHealthy, h.Status)
	assert.Equal(t, "1 pipelines, 0 processed, 0 chained, 0 errors", h.Message)
	assert.Equal(t, "pipelines=1 workers=2", m.Describe().Details)
	assert.NoError(t, m.Stop(ctx))
}
