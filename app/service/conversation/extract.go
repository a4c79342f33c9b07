package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Value is one candidate text carried by a generation result.
// It is one of Text, Thunk or Opaque.
type Value interface {
	isValue()
}

// Text is a ready string.
type Text string

// Thunk reads the text on demand, e.g. by draining a completion stream.
type Thunk func(ctx context.Context) (string, error)

// Opaque wraps a value of unknown shape.
type Opaque struct {
	V any
}

func (Text) isValue()   {}
func (Thunk) isValue()  {}
func (Opaque) isValue() {}

// Envelope is what a Generator hands back.
type Envelope struct {
	Response Value
	Outputs  []Value
	Raw      Value
}

// Pick returns the first defined candidate: Response, then Outputs[0], then Raw.
func (e *Envelope) Pick() Value {
	if e == nil {
		return nil
	}

	if e.Response != nil {
		return e.Response
	}

	if len(e.Outputs) > 0 && e.Outputs[0] != nil {
		return e.Outputs[0]
	}

	return e.Raw
}

// Extract turns a candidate into plain text. It never fails: anything that
// goes wrong while reading the candidate yields "".
func Extract(ctx context.Context, v Value) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Response extraction panicked", "panic", r)
			text = ""
		}
	}()

	switch v := v.(type) {
	case nil:
		return ""
	case Text:
		return string(v)
	case Thunk:
		if v == nil {
			return ""
		}

		s, err := v(ctx)
		if err != nil {
			slog.Warn("Failed to read response text", "error", err)
			return ""
		}

		return s
	case Opaque:
		return describe(v.V)
	default:
		return fmt.Sprint(v)
	}
}

func describe(x any) string {
	switch x := x.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}

	data, err := json.Marshal(x)
	if err != nil {
		slog.Warn("Failed to encode response object", "error", err)
		return ""
	}

	if string(data) == "null" {
		return ""
	}

	return string(data)
}
