package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/codenexus/component"
	"github.com/kbukum/codenexus/logger"
)

func TestSensorHandler(t *testing.T) {
	h := NewSensorHandler("SENSOR_001")
	out, err := h.ProcessBatch(context.Background(), Batch{"temp:22.5", "humidity:65", "pressure:1013"})
	require.NoError(t, err)
	assert.Equal(t, "Sensor analysis: 3 readings processed, avg temp: 22.5°C", out)

	out, err = h.ProcessBatch(context.Background(), Batch{"humidity:65"})
	require.NoError(t, err)
	assert.Equal(t, "Sensor analysis: 1 readings processed, avg temp: N/A°C", out)

	assert.Equal(t, Stats{StreamID: "SENSOR_001", Type: TypeSensor, Counters: map[string]int64{"total_readings": 4}}, h.Stats())
}

func TestSensorHandlerMalformed(t *testing.T) {
	h := NewSensorHandler("SENSOR_001")
	_, err := h.ProcessBatch(context.Background(), Batch{"temperature"})
	assert.EqualError(t, err, `malformed token "temperature": missing ':'`)
}

func TestTransactionHandler(t *testing.T) {
	h := NewTransactionHandler("TRANS_001")
	out, err := h.ProcessBatch(context.Background(), Batch{"buy:100", "sell:150", "buy:75"})
	require.NoError(t, err)
	assert.Equal(t, "Transaction analysis: 3 operations, net flow: +25 units", out)

	out, err = h.ProcessBatch(context.Background(), Batch{"sell:10"})
	require.NoError(t, err)
	assert.Equal(t, "Transaction analysis: 1 operations, net flow: -10 units", out)

	assert.EqualValues(t, 4, h.Stats().Counters["total_operations"])

	_, err = h.ProcessBatch(context.Background(), Batch{"buy:lots"})
	assert.ErrorContains(t, err, `invalid amount in "buy:lots"`)
}

func TestEventHandlerRunningTotals(t *testing.T) {
	h := NewEventHandler("EVENT_001")
	out, err := h.ProcessBatch(context.Background(), Batch{"login", "error", "logout"})
	require.NoError(t, err)
	assert.Equal(t, "Event analysis: 3 events, 1 error detected", out)

	out, err = h.ProcessBatch(context.Background(), Batch{"error", "error"})
	require.NoError(t, err)
	assert.Equal(t, "Event analysis: 5 events, 3 error detected", out)

	assert.Equal(t, map[string]int64{"total_events": 5, "total_errors": 3}, h.Stats().Counters)
}

func TestFilterData(t *testing.T) {
	batch := Batch{"temp:18.0", "temp:21.0", "buy:100", "sell:50", "buy:200", "buy:75", "login", "error", "logout"}
	original := append(Batch(nil), batch...)

	sensor := NewSensorHandler("S")
	trans := NewTransactionHandler("T")
	event := NewEventHandler("E")

	assert.Equal(t, Batch{"temp:18.0", "temp:21.0"}, sensor.FilterData(batch, CriteriaTemp))
	assert.Equal(t, Batch{"buy:200"}, trans.FilterData(batch, CriteriaLarge))
	assert.Equal(t, batch, sensor.FilterData(batch, "other"))
	assert.Equal(t, batch, event.FilterData(batch, CriteriaTemp))

	filtered := trans.FilterData(batch, "")
	filtered[0] = "mutated"
	assert.Equal(t, original, batch)
}

type failingHandler struct {
	EventHandler
	err   error
	panic bool
}

func (h *failingHandler) ProcessBatch(context.Context, Batch) (string, error) {
	if h.panic {
		panic("handler exploded")
	}
	return "", h.err
}

func newFailing(id string, err error, panics bool) *failingHandler {
	h := &failingHandler{err: err, panic: panics}
	h.init(id, "Broken")
	return h
}

func newTestDispatcher(workers int) *Dispatcher {
	return NewDispatcher(WithWorkers(workers), WithLogger(logger.NewNop()), WithMetrics(nil))
}

func TestDispatcherIsolation(t *testing.T) {
	for _, workers := range []int{1, 3} {
		d := newTestDispatcher(workers)
		d.AddHandler(NewSensorHandler("A"))
		d.AddHandler(newFailing("B", errors.New("bad batch"), false))
		d.AddHandler(NewTransactionHandler("C"))

		results := d.ProcessAll(context.Background(), Batch{"temp:18.0", "buy:100", "sell:50"})
		require.Len(t, results, 3)
		assert.Equal(t, "Sensor analysis: 3 readings processed, avg temp: 18.0°C", results[0])
		assert.Equal(t, "Error processing stream B: bad batch", results[1])
		assert.Equal(t, "Transaction analysis: 3 operations, net flow: +50 units", results[2])
		assert.False(t, IsErrorResult(results[0]))
		assert.True(t, IsErrorResult(results[1]))
	}
}

func TestDispatcherRecoversPanic(t *testing.T) {
	d := newTestDispatcher(2)
	d.AddHandler(newFailing("P", nil, true))
	d.AddHandler(NewEventHandler("E"))

	results := d.ProcessAll(context.Background(), Batch{"error"})
	assert.Equal(t, []string{
		"Error processing stream P: handler exploded",
		"Event analysis: 1 events, 1 error detected",
	}, results)
}

func TestDispatcherHandlerErrorFromMalformedToken(t *testing.T) {
	d := newTestDispatcher(1)
	d.AddHandler(NewTransactionHandler("TRANS_001"))
	results := d.ProcessAll(context.Background(), Batch{"buy"})
	assert.Equal(t, []string{`Error processing stream TRANS_001: malformed token "buy": missing ':'`}, results)
}

func TestDispatcherStats(t *testing.T) {
	d := newTestDispatcher(1)
	d.AddHandler(NewSensorHandler("S"))
	d.AddHandler(NewEventHandler("E"))
	d.ProcessAll(context.Background(), Batch{"temp:1", "error"})

	stats := d.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "S", stats[0].StreamID)
	assert.EqualValues(t, 2, stats[0].Counters["total_readings"])
	assert.Equal(t, TypeEvent, stats[1].Type)
	assert.EqualValues(t, 1, stats[1].Counters["total_errors"])
	assert.Len(t, d.Handlers(), 2)
}

func TestDispatcherEmpty(t *testing.T) {
	d := newTestDispatcher(4)
	assert.Empty(t, d.ProcessAll(context.Background(), Batch{"x"}))
}

func TestDispatcherLifecycle(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(1)
	assert.Error(t, d.Start(ctx))
	assert.Equal(t, component.StatusUnhealthy, d.Health(ctx).Status)

	d.AddHandler(NewSensorHandler("S"))
	require.NoError(t, d.Start(ctx))
	assert.Equal(t, component.StatusHealthy, d.Health(ctx).Status)
	assert.Equal(t, "Stream Dispatcher", d.Describe().Name)
	assert.NoError(t, d.Stop(ctx))
}
