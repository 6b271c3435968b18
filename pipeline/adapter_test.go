package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/codenexus/logger"
)

var quiet = []Option{WithLogger(logger.NewNop()), WithMetrics(nil)}

// recorded returns adapter options logging JSON into buf.
func recorded(buf *bytes.Buffer) []Option {
	l := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "nexus", buf)
	return []Option{WithLogger(l), WithMetrics(nil)}
}

// logEvent returns the first JSON log event in buf with the given message.
func logEvent(t *testing.T, buf *bytes.Buffer, message string) map[string]any {
	t.Helper()
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		if ev["message"] == message {
			return ev
		}
	}
	t.Fatalf("no log event %q in:\n%s", message, buf.String())
	return nil
}

func TestParseCSVRecord(t *testing.T) {
	m, err := ParseCSVRecord("user,action,timestamp", ',')
	require.NoError(t, err)
	assert.Equal(t, Mapping{
		{Key: "user", Value: 0},
		{Key: "action", Value: 1},
		{Key: "timestamp", Value: 2},
	}, m)

	m, err = ParseCSVRecord("a; b ;c", ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}

func TestParseCSVRecordErrors(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		delim rune
		want  string
	}{
		{"empty", "", ',', "empty CSV input"},
		{"empty field", "a,,c", ',', "empty field at position 1"},
		{"duplicate", "a,b,a", ',', `duplicate field "a"`},
		{"multi record", "a,b\nc,d", ',', "expected a single CSV record, got 2"},
		{"bad delimiter", "a\"b", '"', "delimiter"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCSVRecord(tc.text, tc.delim)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCSVAdapterProcess(t *testing.T) {
	a := NewCSVAdapter("CSV_001", ',', quiet...)
	out := a.Process(context.Background(), "user,action,timestamp")
	assert.Equal(t, "[OUTPUT] Mapping processed successfully\n"+
		"  Summary : Mapping with 3 fields\n"+
		"  Fields  : user, action, timestamp\n"+
		"  Size    : 3 fields", out)

	stats := a.Stats()
	assert.EqualValues(t, 1, stats.Processed)
	assert.EqualValues(t, 3, stats.StagesRun)
	assert.EqualValues(t, 0, stats.Errors)
	assert.Equal(t, FormatCSV, a.Format())
	assert.Equal(t, ',', a.Delimiter())
}

func TestCSVAdapterParseError(t *testing.T) {
	a := NewCSVAdapter("CSV_001", ',', quiet...)

	out := a.Process(context.Background(), 12)
	assert.Equal(t, "[ERROR] CSV parsing failed: expected delimited text, got int", out)

	out = a.Process(context.Background(), "a,,b")
	assert.True(t, IsErrorReport(out))

	stats := a.Stats()
	assert.EqualValues(t, 2, stats.Errors)
	assert.EqualValues(t, 0, stats.Processed)
	assert.EqualValues(t, 0, stats.StagesRun)
}

func TestSummarizeReadings(t *testing.T) {
	avg, err := SummarizeReadings([]float64{22.5, 21.0, 22.1, 22.8, 21.9})
	require.NoError(t, err)
	assert.Equal(t, 22.1, avg)

	_, err = SummarizeReadings(nil)
	assert.EqualError(t, err, "cannot average an empty stream")
}

func TestStreamAdapterProcess(t *testing.T) {
	a := NewStreamAdapter("STREAM_001", quiet...)
	out := a.Process(context.Background(), []float64{22.5, 21.0, 22.1, 22.8, 21.9})
	assert.Equal(t, "[OUTPUT] Mapping processed successfully\n"+
		"  Summary : Mapping with 2 fields\n"+
		"  Fields  : readings, count\n"+
		"  Size    : 2 fields", out)
	assert.EqualValues(t, 1, a.Stats().Processed)
}

func TestStreamAdapterParseErrors(t *testing.T) {
	a := NewStreamAdapter("STREAM_001", quiet...)
	ctx := context.Background()

	assert.Equal(t, "[ERROR] Stream parsing failed: cannot average an empty stream", a.Process(ctx, []float64{}))
	assert.Equal(t, "[ERROR] Stream parsing failed: non-numeric reading at position 1: x", a.Process(ctx, []any{1.0, "x"}))
	assert.Equal(t, "[ERROR] Stream parsing failed: expected numeric sequence, got string", a.Process(ctx, "1,2"))
	assert.EqualValues(t, 3, a.Stats().Errors)
}

func TestToReadings(t *testing.T) {
	r, err := ToReadings([]any{1, int64(2), float32(3.5), uint8(4)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3.5, 4}, r)

	_, err = ToReadings([]any{true})
	assert.Error(t, err)
}

func TestJSONAdapterProcess(t *testing.T) {
	a := NewJSONAdapter("JSON_001", quiet...)
	ctx := context.Background()

	out := a.Process(ctx, map[string]any{"sensor": "temp", "value": 23.5, "unit": "C"})
	assert.Equal(t, "[OUTPUT] Mapping processed successfully\n"+
		"  Summary : Mapping with 3 fields\n"+
		"  Fields  : sensor, unit, value\n"+
		"  Size    : 3 fields", out)

	out = a.Process(ctx, `{"sensor": "temp", "value": 23.5, "unit": "C"}`)
	assert.Contains(t, out, "Fields  : sensor, value, unit")

	out = a.Process(ctx, map[string]any{})
	assert.Equal(t, "[ERROR] Pipeline failed: Empty mapping received", out)

	assert.EqualValues(t, 3, a.Stats().Processed)
	assert.EqualValues(t, 0, a.Stats().Errors)
}

func TestJSONAdapterParseErrors(t *testing.T) {
	a := NewJSONAdapter("JSON_001", quiet...)
	ctx := context.Background()

	assert.True(t, IsErrorReport(a.Process(ctx, `{"sensor":`)))
	assert.Equal(t, "[ERROR] JSON parsing failed: expected mapping or JSON text, got []int", a.Process(ctx, []int{1}))
	assert.Equal(t, "[ERROR] JSON parsing failed: empty JSON input", a.Process(ctx, ""))
	assert.EqualValues(t, 3, a.Stats().Errors)
	assert.EqualValues(t, 0, a.Stats().Processed)
}

func TestDecodeJSONNested(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"b": [1, {"y": 2, "x": 3}], "a": null}`))
	require.NoError(t, err)
	m := v.(Mapping)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	list := m[0].Value.([]any)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"y", "x"}, list[1].(Mapping).Keys())

	_, err = DecodeJSON([]byte(`{} {}`))
	assert.Error(t, err)
}

func TestStreamAdapterLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	a := NewStreamAdapter("STREAM_001", recorded(&buf)...)
	a.Process(context.Background(), []float64{22.5, 21.0, 22.1, 22.8, 21.9})

	ev := logEvent(t, &buf, "Transform: aggregated and filtered")
	assert.Equal(t, FormatStream, ev[logger.FieldAdapter])
	assert.Equal(t, "STREAM_001", ev[logger.FieldPipeline])
	assert.Equal(t, "Stream summary: 5 readings, avg: 22.1°C", ev["summary"])
}

func TestJSONAdapterLogsReading(t *testing.T) {
	var buf bytes.Buffer
	a := NewJSONAdapter("JSON_001", recorded(&buf)...)
	a.Process(context.Background(), `{"sensor": "temp", "value": 23.5, "unit": "C"}`)

	ev := logEvent(t, &buf, "Transform: enriched with metadata and validation")
	assert.Equal(t, FormatJSON, ev[logger.FieldAdapter])
	assert.Equal(t, "23.5°C", ev["reading"])

	buf.Reset()
	a.Process(context.Background(), map[string]any{"sensor": "temp"})
	ev = logEvent(t, &buf, "Transform: enriched with metadata and validation")
	assert.NotContains(t, ev, "reading")
}

func TestCSVAdapterLogsFieldCount(t *testing.T) {
	var buf bytes.Buffer
	a := NewCSVAdapter("CSV_001", ',', recorded(&buf)...)
	a.Process(context.Background(), "user,action,timestamp")

	ev := logEvent(t, &buf, "Transform: parsed and structured data")
	assert.Equal(t, FormatCSV, ev[logger.FieldAdapter])
	assert.EqualValues(t, 3, ev["fields"])
}
