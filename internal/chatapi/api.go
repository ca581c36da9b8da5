// Package chatapi exposes the streaming chat endpoint. Responses go out
// as server-sent events: text deltas and tool events as they happen,
// then a final done event carrying the assembled result.
package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/ward/internal/chat"
)

// ChatService defines the business operation chatapi needs.
type ChatService interface {
	Run(ctx context.Context, req *chat.Request, sink chat.Sink) (*chat.Result, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    ChatService
}

// New creates a new API handler.
func New(logger log.Logger, svc ChatService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("chat service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", a.handleChat)
	})
}

func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Prompt == "" {
		http.Error(w, `{"error":"prompt is required"}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming not supported"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("ward.chat.prompt_chars", len(req.Prompt)))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := newSSESink(w, flusher)

	res, err := a.svc.Run(r.Context(), &req, sink)
	if err != nil {
		// The stream is already underway; the error goes out in-band.
		// Text that reached the client before the failure stands.
		a.logger.Error(r.Context(), err, "chat run failed")
		sink.writeError(clientMessage(err))
		return
	}

	span.SetAttributes(attribute.String("ward.chat.id", res.ID))
	sink.writeDone(res)
}

// clientMessage keeps provider internals out of the response body.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, chat.ErrSinkUnavailable):
		return "client connection lost"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "request cancelled"
	default:
		return "chat run failed"
	}
}
