package chat

import "encoding/json"

// TraceItem is one structured reasoning/processing step attached to a
// turn. Items append in receipt order and are never reordered or
// deduplicated.
//
// Additive changes to this struct are backward compatible for
// implementers.
type TraceItem struct {
	Step    string          `json:"step"`
	Stage   string          `json:"stage,omitempty"`
	Level   string          `json:"level,omitempty"`
	Time    string          `json:"time,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// TraceLevelError tags synthetic entries recording a stream failure.
	TraceLevelError = "error"
)

// traceLog accumulates trace items for one in-flight turn. It is the
// per-turn counterpart of the transcript: append-only, single writer.
type traceLog struct {
	items []TraceItem
}

func (t *traceLog) append(item TraceItem) {
	t.items = append(t.items, item)
}

// snapshot returns the accumulated items. The returned slice is a copy
// so a finalized message never aliases live stream state.
func (t *traceLog) snapshot() []TraceItem {
	if len(t.items) == 0 {
		return nil
	}
	out := make([]TraceItem, len(t.items))
	copy(out, t.items)
	return out
}
