package claude

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/ward/internal/chat"
	"github.com/linnemanlabs/ward/internal/tools"
)

type stubTool struct {
	name string
	out  json.RawMessage
	err  error
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"patient_id":{"type":"string"}},"required":["patient_id"]}`)
}
func (s *stubTool) Execute(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return s.out, s.err
}

func registryWith(ts ...tools.Tool) *tools.Registry {
	r := tools.NewRegistry()
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

func TestToSDKTools(t *testing.T) {
	t.Parallel()

	defs := []tools.ToolDef{{
		Name:        "get_patient_record",
		Description: "fetch the chart",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"patient_id":{"type":"string"}},"required":["patient_id"]}`),
	}}

	result := toSDKTools(defs)

	if len(result) != 1 {
		t.Fatalf("len = %d, want 1", len(result))
	}
	if result[0].OfTool == nil {
		t.Fatal("expected OfTool to be set")
	}
	if result[0].OfTool.Name != "get_patient_record" {
		t.Errorf("name = %q, want %q", result[0].OfTool.Name, "get_patient_record")
	}
	if !result[0].OfTool.Description.Valid() || result[0].OfTool.Description.Value != "fetch the chart" {
		t.Errorf("description = %v, want %q", result[0].OfTool.Description, "fetch the chart")
	}
	if len(result[0].OfTool.InputSchema.Required) != 1 || result[0].OfTool.InputSchema.Required[0] != "patient_id" {
		t.Errorf("required = %v, want [patient_id]", result[0].OfTool.InputSchema.Required)
	}
}

func TestBuildParams_Defaults(t *testing.T) {
	t.Parallel()

	c := New("key", "claude-sonnet-4-5", registryWith(&stubTool{name: "get_patient_record"}), log.Nop())
	params := c.buildParams(&chat.Request{Prompt: "how is P2001 doing?"})

	if params.MaxTokens != defaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", params.MaxTokens, defaultMaxTokens)
	}
	if len(params.System) != 1 || params.System[0].Text != defaultSystemPrompt {
		t.Error("expected the default system prompt")
	}
	if params.Temperature.Valid() {
		t.Error("temperature should be unset by default")
	}
	if len(params.Messages) != 1 {
		t.Fatalf("messages len = %d, want 1", len(params.Messages))
	}
	if len(params.Tools) != 1 {
		t.Errorf("tools len = %d, want 1", len(params.Tools))
	}
}

func TestBuildParams_Overrides(t *testing.T) {
	t.Parallel()

	c := New("key", "claude-sonnet-4-5", nil, log.Nop(), WithMaxTokens(512))
	temp := 0.3
	maxTokens := int64(64)
	params := c.buildParams(&chat.Request{
		Prompt:       "hi",
		SystemPrompt: "answer in one word",
		Temperature:  &temp,
		MaxTokens:    &maxTokens,
	})

	if params.MaxTokens != 64 {
		t.Errorf("MaxTokens = %d, want 64", params.MaxTokens)
	}
	if params.System[0].Text != "answer in one word" {
		t.Errorf("system = %q, want override", params.System[0].Text)
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0.3 {
		t.Errorf("temperature = %v, want 0.3", params.Temperature)
	}
	if len(params.Tools) != 0 {
		t.Errorf("tools len = %d, want 0 without a registry", len(params.Tools))
	}
}

func TestStream_EmptyPromptRejected(t *testing.T) {
	t.Parallel()

	c := New("key", "claude-sonnet-4-5", nil, log.Nop())
	if _, err := c.Stream(context.Background(), &chat.Request{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if _, err := c.Stream(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestStream_ProducerConsumerOrdering(t *testing.T) {
	t.Parallel()

	s := newStream()
	go func() {
		ctx := context.Background()
		s.emit(ctx, chat.Chunk{Kind: chat.KindTextDelta, Text: "a"})
		s.emit(ctx, chat.Chunk{Kind: chat.KindTextDelta, Text: "b"})
		s.usage = chat.Usage{InputTokens: 10, OutputTokens: 2}
		s.close()
	}()

	var got []string
	for s.Next() {
		got = append(got, s.Current().Text)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("chunks = %v, want [a b]", got)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}
	usage, err := s.Usage()
	if err != nil {
		t.Fatalf("Usage err = %v", err)
	}
	if usage.InputTokens != 10 || usage.OutputTokens != 2 {
		t.Errorf("usage = %+v, want {10 2}", usage)
	}
}

func TestStream_ErrSettledBeforeExhaustion(t *testing.T) {
	t.Parallel()

	s := newStream()
	want := errors.New("model stream: connection reset")
	go func() {
		s.err = want
		s.close()
	}()

	if s.Next() {
		t.Fatal("expected no chunks")
	}
	if !errors.Is(s.Err(), want) {
		t.Errorf("Err = %v, want %v", s.Err(), want)
	}
	if _, err := s.Usage(); !errors.Is(err, want) {
		t.Errorf("Usage err = %v, want %v", err, want)
	}
}

func TestStream_EmitStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	s := newStream()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No consumer is reading; a cancelled context must unblock emit.
	if s.emit(ctx, chat.Chunk{Kind: chat.KindTextDelta, Text: "x"}) {
		t.Fatal("emit should report false after cancellation")
	}
}

func TestRunTool_UnknownTool(t *testing.T) {
	t.Parallel()

	c := New("key", "claude-sonnet-4-5", registryWith(), log.Nop())
	content, isError := c.runTool(context.Background(), "no_such_tool", json.RawMessage(`{}`))
	if !isError {
		t.Error("expected isError for unknown tool")
	}
	if !strings.Contains(content, "no_such_tool") {
		t.Errorf("content %q should name the tool", content)
	}
}

func TestRunTool_ExecutionOutcomes(t *testing.T) {
	t.Parallel()

	c := New("key", "claude-sonnet-4-5", registryWith(
		&stubTool{name: "ok_tool", out: json.RawMessage(`{"found":true}`)},
		&stubTool{name: "bad_tool", err: errors.New("emr unavailable")},
	), log.Nop())

	content, isError := c.runTool(context.Background(), "ok_tool", json.RawMessage(`{}`))
	if isError {
		t.Error("ok_tool should not report an error")
	}
	if content != `{"found":true}` {
		t.Errorf("content = %q", content)
	}

	content, isError = c.runTool(context.Background(), "bad_tool", json.RawMessage(`{}`))
	if !isError {
		t.Error("bad_tool should report an error")
	}
	if !strings.Contains(content, "emr unavailable") {
		t.Errorf("content %q should carry the tool error", content)
	}
}
