package pipeline

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	apperrors "github.com/kbukum/codenexus/errors"
)

// Status is the lifecycle tag of a Record.
type Status string

const (
	StatusValid       Status = "valid"
	StatusInvalid     Status = "invalid"
	StatusTransformed Status = "transformed"
)

// Kind discriminates the shape of a Record's raw payload.
type Kind string

const (
	KindMapping Kind = "mapping"
	KindText    Kind = "text"
	KindList    Kind = "list"
)

// Field is one key/value entry of a Mapping.
type Field struct {
	Key   string
	Value any
}

// Mapping is an insertion-ordered string-keyed mapping.
type Mapping []Field

// Keys returns the keys in order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (any, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String renders the mapping in order as {k: v, ...}.
func (m Mapping) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", f.Key, f.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// MappingFrom converts a Go map with string keys into a Mapping with sorted keys.
// The second result is false when v is not such a map.
func MappingFrom(v any) (Mapping, bool) {
	switch m := v.(type) {
	case Mapping:
		return m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Mapping, len(keys))
		for i, k := range keys {
			out[i] = Field{Key: k, Value: m[k]}
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make(Mapping, len(keys))
	for i, k := range keys {
		out[i] = Field{Key: k.String(), Value: rv.MapIndex(k).Interface()}
	}
	return out, true
}

// listLen reports the length of v when v is a slice or array that is not a byte slice.
func listLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	if _, isBytes := byteSlice(v); isBytes {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

// byteSlice reports whether v is a slice of bytes, named types such as
// json.RawMessage included, and returns its contents.
func byteSlice(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	return rv.Bytes(), true
}

// Record is the status-tagged value passed between stages. Stages return a
// new Record; the raw payload is carried forward untouched.
type Record struct {
	Status Status
	Kind   Kind
	Raw    any

	// Err and Code are set when Status is invalid.
	Err  string
	Code apperrors.ErrorCode

	// Enrichment added by TransformStage.
	Keys      []string
	Size      int
	Words     []string
	WordCount int
	CharCount int
	Count     int
	Summary   string
}

// Invalid reports whether the record was rejected by a stage.
func (r Record) Invalid() bool { return r.Status == StatusInvalid }

func invalidRecord(raw any, kind Kind, err *apperrors.AppError) Record {
	return Record{Status: StatusInvalid, Kind: kind, Raw: raw, Err: err.Message, Code: err.Code}
}
