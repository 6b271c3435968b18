package processor

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/logger"
)

// ErrEmptyInput is returned by Process when Validate reports an empty value.
var ErrEmptyInput = stderrors.New("input is empty")

// Processor validates, processes and formats one kind of value.
type Processor interface {
	Name() string
	// Validate reports false for an empty value and an error for a value of the wrong shape.
	Validate(data any) (bool, error)
	Process(data any) (string, error)
	FormatOutput(result string) string
}

// Run validates, processes and formats data with p. Failures are returned as
// "[ERROR] ..." strings.
func Run(p Processor, data any) string {
	log := logger.Get("processor").WithFields(logger.Fields("processor", p.Name()))

	ok, err := p.Validate(data)
	if err != nil {
		log.Warn("validation failed", logger.ErrorFields("validate", err))
		return "[ERROR] " + err.Error()
	}
	if !ok {
		log.Warn("empty input rejected")
		return fmt.Sprintf("[ERROR] %s %s", p.Name(), ErrEmptyInput)
	}

	result, err := p.Process(data)
	if err != nil {
		return "[ERROR] " + err.Error()
	}
	log.Debug("input processed")
	return p.FormatOutput(result)
}

func process(p Processor, data any, fn func() string) (string, error) {
	ok, err := p.Validate(data)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.InvalidInput(p.Name() + " input is empty").WithCause(ErrEmptyInput)
	}
	return fn(), nil
}

// Numeric sums and averages a sequence of integers.
type Numeric struct{}

func (Numeric) Name() string { return "numeric" }

func (Numeric) Validate(data any) (bool, error) {
	if data == nil {
		return false, nil
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, apperrors.InvalidInput(fmt.Sprintf("expected a sequence of numbers, got %T", data))
	}
	if rv.Len() == 0 {
		return false, nil
	}
	for i := 0; i < rv.Len(); i++ {
		if _, ok := asInt(rv.Index(i).Interface()); !ok {
			return false, apperrors.InvalidInput(fmt.Sprintf("'%v' should be a number.", rv.Index(i).Interface()))
		}
	}
	return true, nil
}

func (n Numeric) Process(data any) (string, error) {
	return process(n, data, func() string {
		rv := reflect.ValueOf(data)
		var total int64
		for i := 0; i < rv.Len(); i++ {
			v, _ := asInt(rv.Index(i).Interface())
			total += v
		}
		avg := float64(total) / float64(rv.Len())
		return fmt.Sprintf("Processed %d numeric values, sum=%d, avg=%s", rv.Len(), total, formatFloat(avg))
	})
}

func (Numeric) FormatOutput(result string) string { return result }

func asInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(rv.Uint()), true
	}
	return 0, false
}

// formatFloat renders f in its shortest form, keeping one decimal for whole numbers.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Text counts characters and words of a string.
type Text struct{}

func (Text) Name() string { return "text" }

func (Text) Validate(data any) (bool, error) {
	s, ok := data.(string)
	if !ok {
		return false, apperrors.InvalidInput("Text should be string.")
	}
	return s != "", nil
}

func (t Text) Process(data any) (string, error) {
	return process(t, data, func() string {
		s := data.(string)
		return fmt.Sprintf("%d characters, %d words", utf8.RuneCountInString(s), len(strings.Fields(s)))
	})
}

func (Text) FormatOutput(result string) string { return "Processed text: " + result }

// Log levels with special handling.
const LevelError = "ERROR"

// Log classifies a log entry holding string "message" and "type" fields.
type Log struct{}

func (Log) Name() string { return "log" }

func logEntry(data any) (msg, typ string, err error) {
	var m map[string]any
	switch v := data.(type) {
	case map[string]any:
		m = v
	case map[string]string:
		m = make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
	default:
		return "", "", apperrors.InvalidInput(fmt.Sprintf("expected a log entry, got %T", data))
	}

	rawMsg, hasMsg := m["message"]
	rawTyp, hasTyp := m["type"]
	if !hasMsg || !hasTyp {
		return "", "", apperrors.InvalidInput("missing arguments 'message' and 'type'.")
	}
	msg, okMsg := rawMsg.(string)
	typ, okTyp := rawTyp.(string)
	if !okMsg || !okTyp {
		return "", "", apperrors.InvalidInput("Log entry should be string.")
	}
	return msg, typ, nil
}

func (Log) Validate(data any) (bool, error) {
	msg, typ, err := logEntry(data)
	if err != nil {
		return false, err
	}
	return msg != "" && typ != "", nil
}

func (l Log) Process(data any) (string, error) {
	return process(l, data, func() string {
		msg, typ, _ := logEntry(data)
		if typ == LevelError {
			return fmt.Sprintf("[ALERT] %s level detected: %s", typ, msg)
		}
		return fmt.Sprintf("[%s] %s level detected: %s", typ, typ, msg)
	})
}

func (Log) FormatOutput(result string) string { return result }
