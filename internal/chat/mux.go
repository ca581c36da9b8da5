package chat

import (
	"context"
	"fmt"
	"strings"
)

// Multiplexer fans one chunk sequence out to a text accumulator and the
// bound sink. It is a push-only forwarder: each chunk's forward
// completes, or fails, before the next chunk is read, so any single
// sink observes exactly the source order.
type Multiplexer struct {
	sink Sink
	text strings.Builder

	textChunks  int
	toolCalls   int
	toolResults int
}

// NewMultiplexer binds a multiplexer to a sink.
func NewMultiplexer(sink Sink) *Multiplexer {
	return &Multiplexer{sink: sink}
}

// Consume drains src in order. Text deltas are forwarded incrementally
// and appended to the accumulator; tool chunks are forwarded verbatim on
// the event side-channel. A sink failure stops consumption and surfaces
// ErrSinkUnavailable; text that was already forwarded stays both
// delivered and accumulated.
func (m *Multiplexer) Consume(ctx context.Context, src Stream) error {
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		c := src.Current()
		switch c.Kind {
		case KindTextDelta:
			if err := m.sink.WriteText(ctx, c.Text); err != nil {
				return fmt.Errorf("%w: forward text: %s", ErrSinkUnavailable, err)
			}
			m.text.WriteString(c.Text)
			m.textChunks++

		case KindToolCall, KindToolResult:
			ev := Event{Kind: c.Kind.String(), Payload: c.Payload}
			if err := m.sink.WriteEvent(ctx, ev); err != nil {
				return fmt.Errorf("%w: forward %s: %s", ErrSinkUnavailable, c.Kind, err)
			}
			if c.Kind == KindToolCall {
				m.toolCalls++
			} else {
				m.toolResults++
			}

		default:
			return fmt.Errorf("unknown chunk kind %d", int(c.Kind))
		}
	}
	return src.Err()
}

// Text returns everything accumulated so far, in emission order.
func (m *Multiplexer) Text() string {
	return m.text.String()
}

// Counts reports how many chunks of each kind were forwarded.
func (m *Multiplexer) Counts() (textChunks, toolCalls, toolResults int) {
	return m.textChunks, m.toolCalls, m.toolResults
}
