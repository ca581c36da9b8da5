package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// Result is the outcome of one chat run.
type Result struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Hooks receive pipeline lifecycle events, for metrics. Nil funcs are
// skipped.
type Hooks struct {
	OnComplete func(status string, duration float64, usage Usage, textChunks, toolCalls, toolResults int)
}

// Pipeline orchestrates one chat request: it drives the provider's
// chunk sequence through a multiplexer bound to the caller's sink and
// assembles the final result once the sequence is exhausted.
type Pipeline struct {
	provider Provider
	logger   log.Logger
	hooks    Hooks
}

// NewPipeline creates a pipeline over the given provider.
func NewPipeline(provider Provider, logger log.Logger, hooks Hooks) *Pipeline {
	if logger == nil {
		logger = log.Nop()
	}
	return &Pipeline{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
	}
}

// Run executes one chat request against the provider, streaming into
// sink as chunks arrive. A nil sink fails immediately with
// ErrMissingSink. On a mid-stream failure Run returns the partial
// Result alongside the error: text already delivered to the sink is
// retained, and the run is reported failed, never silently truncated.
// An empty source sequence is a success with empty content.
func (p *Pipeline) Run(ctx context.Context, req *Request, sink Sink) (*Result, error) {
	if sink == nil {
		return nil, ErrMissingSink
	}

	start := time.Now()
	id := ulid.Make().String()
	L := p.logger.With("chat_id", id)

	// The derived context releases the provider's producer if we stop
	// consuming early (sink failure, caller disconnect).
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, err := p.provider.Stream(ctx, req)
	if err != nil {
		p.complete("failed", start, Usage{}, nil)
		return nil, fmt.Errorf("start model stream: %w", err)
	}

	mux := NewMultiplexer(sink)
	if err := mux.Consume(ctx, src); err != nil {
		L.Error(ctx, err, "chat run failed mid-stream", "delivered_chars", len(mux.Text()))
		p.complete("failed", start, Usage{}, mux)
		return &Result{ID: id, Content: mux.Text()}, err
	}

	usage, err := src.Usage()
	if err != nil {
		L.Error(ctx, err, "usage summary unavailable")
		p.complete("failed", start, usage, mux)
		return &Result{ID: id, Content: mux.Text()}, fmt.Errorf("usage summary: %w", err)
	}

	res := &Result{ID: id, Content: mux.Text(), Usage: usage}

	texts, calls, results := mux.Counts()
	L.Info(ctx, "chat run complete",
		"chars", len(res.Content),
		"text_chunks", texts,
		"tool_calls", calls,
		"tool_results", results,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"duration", time.Since(start).Seconds(),
	)
	p.complete("complete", start, usage, mux)

	return res, nil
}

func (p *Pipeline) complete(status string, start time.Time, usage Usage, mux *Multiplexer) {
	if p.hooks.OnComplete == nil {
		return
	}
	var texts, calls, results int
	if mux != nil {
		texts, calls, results = mux.Counts()
	}
	p.hooks.OnComplete(status, time.Since(start).Seconds(), usage, texts, calls, results)
}
