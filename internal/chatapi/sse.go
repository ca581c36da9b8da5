package chatapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/linnemanlabs/ward/internal/chat"
)

// sseSink writes chat chunks to one HTTP response as server-sent
// events, flushing after every event so deltas reach the client as they
// are produced.
type sseSink struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
}

func newSSESink(w io.Writer, flusher http.Flusher) *sseSink {
	return &sseSink{w: w, flusher: flusher}
}

func (s *sseSink) WriteText(_ context.Context, text string) error {
	data, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	return s.write("text-delta", data)
}

func (s *sseSink) WriteEvent(_ context.Context, ev chat.Event) error {
	return s.write(ev.Kind, ev.Payload)
}

func (s *sseSink) writeDone(res *chat.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = s.write("done", data)
}

func (s *sseSink) writeError(msg string) {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return
	}
	_ = s.write("error", data)
}

func (s *sseSink) write(event string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
