// Package chat turns a single model invocation into an incrementally
// delivered, typed event stream: text deltas accumulate into the reply
// body while tool events fan out on a structured side-channel, with
// source order preserved on every sink.
//
// No per-chunk deadline is imposed here; the model client's own timeout
// and the caller's context are the only bounds on chunk arrival.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingSink reports a pipeline run started without an output
	// sink. Streaming is mandatory; there is no buffered fallback.
	ErrMissingSink = errors.New("output sink is required")

	// ErrSinkUnavailable reports an output sink that broke mid-stream.
	// Text already forwarded is not retracted.
	ErrSinkUnavailable = errors.New("output sink unavailable")
)

// Kind discriminates the chunk union.
type Kind int

const (
	KindTextDelta Kind = iota + 1
	KindToolCall
	KindToolResult
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTextDelta:
		return "text-delta"
	case KindToolCall:
		return "tool-call"
	case KindToolResult:
		return "tool-result"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Chunk is one unit of a streamed model response: either an incremental
// piece of reply text or a structured tool event.
type Chunk struct {
	Kind    Kind
	Text    string          // KindTextDelta only
	Payload json.RawMessage // KindToolCall / KindToolResult only
}

// Event is a structured side-channel item forwarded to a sink.
type Event struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Sink accepts the two halves of a chat stream. WriteText has
// incremental append semantics; each call extends the reply, it never
// replaces it.
type Sink interface {
	WriteText(ctx context.Context, text string) error
	WriteEvent(ctx context.Context, ev Event) error
}

// Usage is the model capability's token accounting, surfaced verbatim
// once the chunk sequence is exhausted.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Stream is an ordered chunk sequence with a deferred usage summary.
// The iteration contract follows the SDK shape: Next advances and
// reports whether a chunk is available, Current returns it, and Err and
// Usage are valid once Next has returned false.
type Stream interface {
	Next() bool
	Current() Chunk
	Err() error
	Usage() (Usage, error)
}

// Provider is the model capability: given a prompt and options it
// yields an ordered chunk sequence.
type Provider interface {
	Stream(ctx context.Context, req *Request) (Stream, error)
}

// Request carries one chat invocation. Nil option fields fall back to
// provider defaults; SystemPrompt, when set, replaces the provider's
// default system instruction.
type Request struct {
	Prompt       string   `json:"prompt"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int64   `json:"max_tokens,omitempty"`
}
