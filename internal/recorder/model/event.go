package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is one recorded invocation of a wrapped function. It is the unit
// appended to a run's trace log, one JSON object per line.
//
// Output and Error are mutually exclusive in a persisted event: exactly one
// of them is set once the call has completed. The three source fields are
// either all present or all absent, depending on whether source resolution
// succeeded at wrap time.
type Event struct {
	CallID          string       `json:"call_id"`
	Function        string       `json:"function"`
	TimestampStart  float64      `json:"timestamp_start"`
	TimestampEnd    float64      `json:"timestamp_end"`
	DurationS       float64      `json:"duration_s"`
	Inputs          Inputs       `json:"inputs"`
	Output          any          `json:"output"`
	Error           *ErrorDetail `json:"error"`
	SourceFile      *string      `json:"source_file"`
	SourceLineStart *int         `json:"source_line_start"`
	SourceLineEnd   *int         `json:"source_line_end"`
}

// Inputs holds the representations of a call's arguments. Args are the
// positional arguments in order; Kwargs are named arguments.
type Inputs struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// ErrorDetail describes a failed call.
type ErrorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	TraceText string `json:"trace_text"`
}

// Failed reports whether the event records a failed call.
func (e *Event) Failed() bool {
	return e.Error != nil
}

// UnixSeconds converts a time to the wall-clock float seconds stored in the
// trace log.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Repr returns a representation of v suitable for the trace log: v itself
// when it survives JSON encoding, otherwise a best-effort diagnostic string.
// Repr is total; it never returns an error and never panics, even when v's
// MarshalJSON or String implementations do.
func Repr(v any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("<unrepresentable %T>", v)
		}
	}()
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return v
}
