package claude

import (
	"context"

	"github.com/linnemanlabs/ward/internal/chat"
)

// stream is the consumer half of one model invocation. The producer
// goroutine emits chunks into ch, records err and usage, then closes
// done before ch, so by the time Next reports exhaustion both are
// settled.
type stream struct {
	ch   chan chat.Chunk
	done chan struct{}

	cur   chat.Chunk
	err   error
	usage chat.Usage
}

func newStream() *stream {
	return &stream{
		ch:   make(chan chat.Chunk),
		done: make(chan struct{}),
	}
}

// Next blocks for the next chunk. It returns false once the producer
// has finished, successfully or not.
func (s *stream) Next() bool {
	c, ok := <-s.ch
	if !ok {
		return false
	}
	s.cur = c
	return true
}

// Current returns the chunk Next last advanced to.
func (s *stream) Current() chat.Chunk { return s.cur }

// Err blocks until the producer finishes and reports its terminal
// error, if any.
func (s *stream) Err() error {
	<-s.done
	return s.err
}

// Usage blocks until the producer finishes and reports the token usage
// summed over every model round of this invocation.
func (s *stream) Usage() (chat.Usage, error) {
	<-s.done
	return s.usage, s.err
}

// emit delivers one chunk to the consumer, or reports false if ctx
// ended before the consumer took it.
func (s *stream) emit(ctx context.Context, c chat.Chunk) bool {
	select {
	case s.ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// close settles err and usage for readers, then releases the consumer.
// Producer-side only, called exactly once.
func (s *stream) close() {
	close(s.done)
	close(s.ch)
}
