package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	apperrors "github.com/kbukum/codenexus/errors"
)

// Stage is one step of a stage chain. Each stage consumes the previous
// stage's output. A returned error is chain-fatal; recoverable conditions
// must be expressed in the returned value.
type Stage interface {
	Name() string
	Process(ctx context.Context, in any) (any, error)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, in any) (any, error)
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Process(ctx context.Context, in any) (any, error) {
	return s.Fn(ctx, in)
}

// DefaultStages returns the Input, Transform and Output stages in chain order.
func DefaultStages() []Stage {
	return []Stage{InputStage{}, TransformStage{}, OutputStage{}}
}

// InputStage classifies a raw value as a mapping, text or list and rejects
// empty or unsupported values by returning an invalid Record.
type InputStage struct{}

func (InputStage) Name() string { return "input" }

func (InputStage) Process(_ context.Context, in any) (any, error) {
	return Classify(in), nil
}

// Classify is the input stage as a plain function.
func Classify(in any) Record {
	switch v := in.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return invalidRecord(v, KindText, apperrors.InvalidInput("Empty string received"))
		}
		return Record{Status: StatusValid, Kind: KindText, Raw: trimmed}
	case []byte:
		return Classify(string(v))
	}
	if b, ok := byteSlice(in); ok {
		return Classify(string(b))
	}

	if m, ok := MappingFrom(in); ok {
		if len(m) == 0 {
			return invalidRecord(in, KindMapping, apperrors.InvalidInput("Empty mapping received"))
		}
		return Record{Status: StatusValid, Kind: KindMapping, Raw: m}
	}

	if n, ok := listLen(in); ok {
		if n == 0 {
			return invalidRecord(in, KindList, apperrors.InvalidInput("Empty list received"))
		}
		return Record{Status: StatusValid, Kind: KindList, Raw: in}
	}

	return invalidRecord(in, "", apperrors.InvalidInput(fmt.Sprintf("Unsupported data type: %T", in)))
}

// TransformStage enriches a valid Record according to its kind. Invalid
// records pass through unchanged. Input that is not a Record is chain-fatal.
type TransformStage struct{}

func (TransformStage) Name() string { return "transform" }

func (TransformStage) Process(_ context.Context, in any) (any, error) {
	rec, err := asRecord(in)
	if err != nil {
		return nil, err
	}
	return Enrich(rec), nil
}

// Enrich is the transform stage as a plain function.
func Enrich(rec Record) Record {
	if rec.Invalid() {
		return rec
	}

	out := rec
	out.Status = StatusTransformed
	switch rec.Kind {
	case KindMapping:
		m, ok := rec.Raw.(Mapping)
		if !ok {
			return transformFailed(rec, fmt.Sprintf("expected mapping payload, got %T", rec.Raw))
		}
		out.Keys = m.Keys()
		out.Size = len(m)
		out.Summary = fmt.Sprintf("Mapping with %d fields", len(m))
	case KindText:
		s, ok := rec.Raw.(string)
		if !ok {
			return transformFailed(rec, fmt.Sprintf("expected text payload, got %T", rec.Raw))
		}
		out.Words = strings.Fields(s)
		out.WordCount = len(out.Words)
		out.CharCount = utf8.RuneCountInString(s)
		out.Summary = fmt.Sprintf("Text with %d words", out.WordCount)
	case KindList:
		n, ok := listLen(rec.Raw)
		if !ok {
			return transformFailed(rec, fmt.Sprintf("expected list payload, got %T", rec.Raw))
		}
		out.Count = n
		out.Summary = fmt.Sprintf("List with %d items", n)
	default:
		return transformFailed(rec, fmt.Sprintf("Unknown data kind: %q", rec.Kind))
	}
	return out
}

func transformFailed(rec Record, reason string) Record {
	return invalidRecord(rec.Raw, rec.Kind, apperrors.TransformFailed("Transform failed: "+reason))
}

// OutputStage renders a Record as a report string. Input that is not a
// Record is chain-fatal.
type OutputStage struct{}

func (OutputStage) Name() string { return "output" }

func (OutputStage) Process(_ context.Context, in any) (any, error) {
	rec, err := asRecord(in)
	if err != nil {
		return nil, err
	}
	return Render(rec), nil
}

// Render is the output stage as a plain function. It is deterministic for a given Record.
func Render(rec Record) string {
	if rec.Invalid() {
		msg := rec.Err
		if msg == "" {
			msg = "Unknown error"
		}
		return ErrorTag + " Pipeline failed: " + msg
	}

	summary := rec.Summary
	if summary == "" {
		summary = "No summary available"
	}
	switch rec.Kind {
	case KindMapping:
		return fmt.Sprintf("%s Mapping processed successfully\n  Summary : %s\n  Fields  : %s\n  Size    : %d fields",
			OutputTag, summary, strings.Join(rec.Keys, ", "), rec.Size)
	case KindText:
		return fmt.Sprintf("%s Text processed successfully\n  Summary : %s\n  Words   : %d\n  Chars   : %d",
			OutputTag, summary, rec.WordCount, rec.CharCount)
	case KindList:
		return fmt.Sprintf("%s List processed successfully\n  Summary : %s\n  Items   : %d",
			OutputTag, summary, rec.Count)
	}
	return fmt.Sprintf("%s Unknown type processed: %s", OutputTag, summary)
}

func asRecord(in any) (Record, error) {
	switch r := in.(type) {
	case Record:
		return r, nil
	case *Record:
		if r != nil {
			return *r, nil
		}
	}
	return Record{}, fmt.Errorf("expected pipeline record, got %s", typeName(in))
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
