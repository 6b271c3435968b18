package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/logger"
)

// Adapter formats.
const (
	FormatJSON   = "JSON"
	FormatCSV    = "CSV"
	FormatStream = "Stream"
)

// Pipeline is an adapter as seen by the Manager.
type Pipeline interface {
	ID() string
	// Format names the native input shape the adapter parses.
	Format() string
	// Process parses input and runs it through the stage chain. It never fails;
	// parse errors come back as "[ERROR] <format> parsing failed: ..." reports.
	Process(ctx context.Context, input any) string
	RunStages(ctx context.Context, in any) (any, error)
	Stats() Stats
}

type parseFunc func(input any) (any, error)

// adapt parses input and delegates to the stage chain. processed counts every
// completed attempt, including chains that produced an error report.
func (p *Instance) adapt(ctx context.Context, format string, input any, parse parseFunc) (string, any, bool) {
	log := p.logger().WithContext(ctx).WithFields(logger.Fields(logger.FieldAdapter, format))
	log.Info(fmt.Sprintf("Processing %s data through pipeline", format), logger.Fields("input", describe(input)))

	parsed, err := parse(input)
	if err != nil {
		p.errors.Add(1)
		p.metrics.RecordPipelineError(ctx, p.id, "parse")
		appErr := apperrors.ParseFailed(format, err.Error()).WithCause(err)
		log.Warn("adapter parse failed", logger.Fields(
			logger.FieldError, appErr.Error(),
			logger.FieldStatus, string(appErr.Code),
		))
		return errorReport(format, err.Error()), nil, false
	}

	out, _ := p.RunStages(ctx, parsed)
	p.processed.Add(1)
	p.metrics.RecordProcessed(ctx, p.id)
	return reportString(out), parsed, true
}

func reportString(out any) string {
	if s, ok := out.(string); ok {
		return s
	}
	return fmt.Sprint(out)
}

func describe(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case []byte:
		return fmt.Sprintf("%q", string(x))
	}
	if m, ok := MappingFrom(v); ok {
		return m.String()
	}
	return fmt.Sprint(v)
}

// --- JSON ---

// JSONAdapter accepts a mapping or JSON text. JSON objects keep their key order.
type JSONAdapter struct {
	*Instance
}

// NewJSONAdapter creates a JSON adapter with the default stage chain.
func NewJSONAdapter(id string, opts ...Option) *JSONAdapter {
	return &JSONAdapter{Instance: newAdapterInstance(id, opts)}
}

func (a *JSONAdapter) Format() string { return FormatJSON }

func (a *JSONAdapter) Process(ctx context.Context, input any) string {
	report, parsed, ok := a.adapt(ctx, FormatJSON, input, parseJSON)
	if !ok {
		return report
	}
	fields := logger.Fields(logger.FieldAdapter, FormatJSON)
	if m, isMap := parsed.(Mapping); isMap {
		if v, found := m.Get("value"); found {
			unit, _ := m.Get("unit")
			fields["reading"] = fmt.Sprintf("%v°%v", v, orEmpty(unit))
		}
	}
	a.logger().WithContext(ctx).Info("Transform: enriched with metadata and validation", fields)
	return report
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

func parseJSON(input any) (any, error) {
	switch v := input.(type) {
	case string:
		return DecodeJSON([]byte(v))
	case []byte:
		return DecodeJSON(v)
	case json.RawMessage:
		return DecodeJSON(v)
	}
	if m, ok := MappingFrom(input); ok {
		return m, nil
	}
	return nil, fmt.Errorf("expected mapping or JSON text, got %s", typeName(input))
}

// DecodeJSON decodes one JSON value, turning objects into ordered Mappings.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty JSON input")
		}
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		m := Mapping{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			m = append(m, Field{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	case '[':
		list := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, fmt.Errorf("unexpected JSON delimiter %q", delim)
}

// --- CSV ---

// CSVAdapter parses one delimited record into a mapping of token to position.
type CSVAdapter struct {
	*Instance
	delimiter rune
}

// NewCSVAdapter creates a CSV adapter splitting on delimiter.
func NewCSVAdapter(id string, delimiter rune, opts ...Option) *CSVAdapter {
	return &CSVAdapter{Instance: newAdapterInstance(id, opts), delimiter: delimiter}
}

func (a *CSVAdapter) Format() string { return FormatCSV }

// Delimiter returns the field delimiter.
func (a *CSVAdapter) Delimiter() rune { return a.delimiter }

func (a *CSVAdapter) Process(ctx context.Context, input any) string {
	report, parsed, ok := a.adapt(ctx, FormatCSV, input, a.parse)
	if !ok {
		return report
	}
	a.logger().WithContext(ctx).Info("Transform: parsed and structured data",
		logger.Fields(logger.FieldAdapter, FormatCSV, "fields", len(parsed.(Mapping))))
	return report
}

func (a *CSVAdapter) parse(input any) (any, error) {
	var text string
	switch v := input.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, fmt.Errorf("expected delimited text, got %s", typeName(input))
	}
	return ParseCSVRecord(text, a.delimiter)
}

// ParseCSVRecord parses exactly one delimited record into token -> zero-based position.
// Tokens are trimmed; empty or repeated tokens are rejected.
func ParseCSVRecord(text string, delimiter rune) (Mapping, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, fmt.Errorf("empty CSV input")
	case 1:
	default:
		return nil, fmt.Errorf("expected a single CSV record, got %d", len(records))
	}

	out := make(Mapping, 0, len(records[0]))
	seen := make(map[string]struct{}, len(records[0]))
	for i, raw := range records[0] {
		token := strings.TrimSpace(raw)
		if token == "" {
			return nil, fmt.Errorf("empty field at position %d", i)
		}
		if _, dup := seen[token]; dup {
			return nil, fmt.Errorf("duplicate field %q at position %d", token, i)
		}
		seen[token] = struct{}{}
		out = append(out, Field{Key: token, Value: i})
	}
	return out, nil
}

// --- Numeric stream ---

// StreamAdapter wraps a numeric sequence together with its length.
type StreamAdapter struct {
	*Instance
}

// NewStreamAdapter creates a numeric stream adapter with the default stage chain.
func NewStreamAdapter(id string, opts ...Option) *StreamAdapter {
	return &StreamAdapter{Instance: newAdapterInstance(id, opts)}
}

func (a *StreamAdapter) Format() string { return FormatStream }

func (a *StreamAdapter) Process(ctx context.Context, input any) string {
	var (
		readings []float64
		avg      float64
	)
	report, _, ok := a.adapt(ctx, FormatStream, input, func(in any) (any, error) {
		var err error
		if readings, err = ToReadings(in); err != nil {
			return nil, err
		}
		if avg, err = SummarizeReadings(readings); err != nil {
			return nil, err
		}
		return Mapping{{Key: "readings", Value: readings}, {Key: "count", Value: len(readings)}}, nil
	})
	if !ok {
		return report
	}
	a.logger().WithContext(ctx).Info("Transform: aggregated and filtered", logger.Fields(
		logger.FieldAdapter, FormatStream,
		"summary", fmt.Sprintf("Stream summary: %d readings, avg: %.1f°C", len(readings), avg),
	))
	return report
}

// ToReadings converts a slice of numbers into float64 readings.
func ToReadings(input any) ([]float64, error) {
	if v, ok := input.([]float64); ok {
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	}
	if input == nil {
		return nil, fmt.Errorf("expected numeric sequence, got <nil>")
	}
	rv := reflect.ValueOf(input)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected numeric sequence, got %s", typeName(input))
	}
	out := make([]float64, rv.Len())
	for i := range out {
		f, ok := toFloat(rv.Index(i).Interface())
		if !ok {
			return nil, fmt.Errorf("non-numeric reading at position %d: %v", i, rv.Index(i).Interface())
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// SummarizeReadings returns the average of readings rounded to one decimal place.
func SummarizeReadings(readings []float64) (float64, error) {
	if len(readings) == 0 {
		return 0, fmt.Errorf("cannot average an empty stream")
	}
	var sum float64
	for _, r := range readings {
		sum += r
	}
	return math.Round(sum/float64(len(readings))*10) / 10, nil
}

func newAdapterInstance(id string, opts []Option) *Instance {
	return NewInstance(id, append([]Option{WithStages(DefaultStages()...)}, opts...)...)
}
