package stream

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/kbukum/codenexus/logger"
)

// Batch is an ordered sequence of raw tokens such as "temp:22.5" or "buy:100".
type Batch []string

// Handler summarizes batches for one data domain.
type Handler interface {
	ID() string
	// Type is the human-readable data category fixed at construction.
	Type() string
	ProcessBatch(ctx context.Context, batch Batch) (string, error)
	// FilterData returns the tokens matching criteria without modifying batch.
	// Unknown criteria return a copy of the whole batch.
	FilterData(batch Batch, criteria string) Batch
	Stats() Stats
}

// Stats identifies a handler and carries its cumulative counters.
type Stats struct {
	StreamID string           `json:"stream_id"`
	Type     string           `json:"type"`
	Counters map[string]int64 `json:"counters"`
}

// Handler type tags.
const (
	TypeSensor      = "Environmental Data"
	TypeTransaction = "Financial Data"
	TypeEvent       = "System Events"
)

// Filter criteria understood by the built-in handlers.
const (
	CriteriaTemp  = "temp"
	CriteriaLarge = "large"
)

const (
	tempMarker  = "temp"
	errorMarker = "error"
	// largeThreshold is exclusive.
	largeThreshold = 100
)

type base struct {
	id  string
	typ string
	mu  sync.Mutex
}

func (b *base) init(id, typ string) {
	b.id, b.typ = id, typ
	logger.Get(componentName).Debug("stream handler initialized", logger.Fields(
		logger.FieldHandler, id,
		"type", typ,
	))
}

func (b *base) ID() string   { return b.id }
func (b *base) Type() string { return b.typ }

// FilterData is the identity filter.
func (b *base) FilterData(batch Batch, _ string) Batch {
	return clone(batch)
}

func clone(batch Batch) Batch {
	out := make(Batch, len(batch))
	copy(out, batch)
	return out
}

// tokenValue returns the text between the first and second ':' of token.
func tokenValue(token string) (string, error) {
	parts := strings.Split(token, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("malformed token %q: missing ':'", token)
	}
	return parts[1], nil
}

// --- Sensor ---

// SensorHandler reports the first temperature reading of a batch.
type SensorHandler struct {
	base
	readings int64
}

// NewSensorHandler creates a sensor handler.
func NewSensorHandler(id string) *SensorHandler {
	h := &SensorHandler{}
	h.init(id, TypeSensor)
	return h
}

func (h *SensorHandler) ProcessBatch(_ context.Context, batch Batch) (string, error) {
	h.mu.Lock()
	h.readings += int64(len(batch))
	h.mu.Unlock()

	temp := "N/A"
	for _, item := range batch {
		if !strings.Contains(item, tempMarker) {
			continue
		}
		v, err := tokenValue(item)
		if err != nil {
			return "", err
		}
		temp = v
		break
	}
	return fmt.Sprintf("Sensor analysis: %d readings processed, avg temp: %s°C", len(batch), temp), nil
}

// FilterData keeps temperature tokens for CriteriaTemp.
func (h *SensorHandler) FilterData(batch Batch, criteria string) Batch {
	if criteria != CriteriaTemp {
		return clone(batch)
	}
	out := Batch{}
	for _, item := range batch {
		if strings.Contains(item, tempMarker) {
			out = append(out, item)
		}
	}
	return out
}

func (h *SensorHandler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{StreamID: h.id, Type: h.typ, Counters: map[string]int64{"total_readings": h.readings}}
}

// --- Transaction ---

// TransactionHandler sums buy and sell amounts into a net flow.
type TransactionHandler struct {
	base
	operations int64
}

// NewTransactionHandler creates a transaction handler.
func NewTransactionHandler(id string) *TransactionHandler {
	h := &TransactionHandler{}
	h.init(id, TypeTransaction)
	return h
}

// amount parses the amount of a buy/sell token. ok is false for other tokens.
func amount(item string) (sign int, n int, ok bool, err error) {
	switch {
	case strings.HasPrefix(item, "buy"):
		sign = 1
	case strings.HasPrefix(item, "sell"):
		sign = -1
	default:
		return 0, 0, false, nil
	}
	v, err := tokenValue(item)
	if err != nil {
		return 0, 0, true, err
	}
	n, err = strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, 0, true, fmt.Errorf("invalid amount in %q: %w", item, err)
	}
	return sign, n, true, nil
}

func (h *TransactionHandler) ProcessBatch(_ context.Context, batch Batch) (string, error) {
	h.mu.Lock()
	h.operations += int64(len(batch))
	h.mu.Unlock()

	net := 0
	for _, item := range batch {
		sign, n, ok, err := amount(item)
		if err != nil {
			return "", err
		}
		if ok {
			net += sign * n
		}
	}
	return fmt.Sprintf("Transaction analysis: %d operations, net flow: %s units", len(batch), signed(net)), nil
}

func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// FilterData keeps buy/sell tokens above 100 units for CriteriaLarge.
// Tokens whose amount cannot be parsed are dropped.
func (h *TransactionHandler) FilterData(batch Batch, criteria string) Batch {
	if criteria != CriteriaLarge {
		return clone(batch)
	}
	out := Batch{}
	for _, item := range batch {
		if _, n, ok, err := amount(item); ok && err == nil && n > largeThreshold {
			out = append(out, item)
		}
	}
	return out
}

func (h *TransactionHandler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{StreamID: h.id, Type: h.typ, Counters: map[string]int64{"total_operations": h.operations}}
}

// --- Event ---

// EventHandler counts events and error markers across batches.
type EventHandler struct {
	base
	events int64
	errors int64
}

// NewEventHandler creates an event handler.
func NewEventHandler(id string) *EventHandler {
	h := &EventHandler{}
	h.init(id, TypeEvent)
	return h
}

// ProcessBatch reports the running totals of events and errors.
func (h *EventHandler) ProcessBatch(_ context.Context, batch Batch) (string, error) {
	var errs int64
	for _, item := range batch {
		if item == errorMarker {
			errs++
		}
	}

	h.mu.Lock()
	h.events += int64(len(batch))
	h.errors += errs
	events, total := h.events, h.errors
	h.mu.Unlock()

	return fmt.Sprintf("Event analysis: %d events, %d error detected", events, total), nil
}

func (h *EventHandler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{StreamID: h.id, Type: h.typ, Counters: map[string]int64{
		"total_events": h.events,
		"total_errors": h.errors,
	}}
}
