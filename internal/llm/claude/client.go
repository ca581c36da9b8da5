// Package claude adapts the Anthropic Messages API to the chat.Provider
// contract. Responses are streamed: text deltas are emitted as they
// arrive, and tool use is resolved inside the provider so the consumer
// sees tool calls and results as ordinary chunks in the same sequence.
package claude

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/ward/internal/chat"
	"github.com/linnemanlabs/ward/internal/tools"
)

const (
	defaultMaxTokens     = 2048
	defaultMaxToolRounds = 8
)

// defaultSystemPrompt is used when the request carries no system prompt
// of its own.
const defaultSystemPrompt = `You are a clinical workflow assistant. You have tools that fetch a
patient's chart record, insurance coverage, recently published evidence,
and contact preferences. When a question references a patient, fetch the
relevant records before answering, cite lab values and medications from
the chart rather than from memory, and flag anything that needs clinician
review. Keep answers concise and practical.`

// Client streams Claude responses as chat chunks. It implements
// chat.Provider.
type Client struct {
	client        anthropic.Client
	model         anthropic.Model
	registry      *tools.Registry
	logger        log.Logger
	maxTokens     int64
	maxToolRounds int
}

// Option adjusts client defaults.
type Option func(*Client)

// WithMaxTokens sets the default output token cap for requests that do
// not specify their own.
func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithMaxToolRounds caps how many model round-trips one request may
// spend resolving tool use.
func WithMaxToolRounds(n int) Option {
	return func(c *Client) { c.maxToolRounds = n }
}

// New creates a Claude client for the given API key and model name. The
// registry's tools are offered to the model on every request.
func New(apiKey, model string, registry *tools.Registry, logger log.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = log.Nop()
	}
	c := &Client{
		client:        anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:         anthropic.Model(model),
		registry:      registry,
		logger:        logger,
		maxTokens:     defaultMaxTokens,
		maxToolRounds: defaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream starts one model invocation and returns its chunk sequence.
// The producer runs until the model stops without requesting a tool,
// the tool round budget runs out, or ctx is cancelled.
func (c *Client) Stream(ctx context.Context, req *chat.Request) (chat.Stream, error) {
	if req == nil || req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	params := c.buildParams(req)
	s := newStream()
	go c.run(ctx, params, s)
	return s, nil
}

func (c *Client) buildParams(req *chat.Request) anthropic.MessageNewParams {
	maxTokens := c.maxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	system := defaultSystemPrompt
	if req.SystemPrompt != "" {
		system = req.SystemPrompt
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if c.registry != nil {
		params.Tools = toSDKTools(c.registry.ToToolDefs())
	}
	return params
}

// run drives the conversation until the model stops asking for tools.
// Each round streams one model turn; tool_use turns are answered with
// executed tool results and the loop continues.
func (c *Client) run(ctx context.Context, params anthropic.MessageNewParams, s *stream) {
	defer s.close()

	for round := 0; round < c.maxToolRounds; round++ {
		msg, ok := c.round(ctx, params, s)
		if !ok {
			return
		}

		s.usage.InputTokens += msg.Usage.InputTokens
		s.usage.OutputTokens += msg.Usage.OutputTokens

		if msg.StopReason != anthropic.StopReasonToolUse {
			return
		}

		results, ok := c.executeTools(ctx, msg, s)
		if !ok {
			return
		}
		params.Messages = append(params.Messages,
			msg.ToParam(),
			anthropic.NewUserMessage(results...),
		)
	}

	s.err = fmt.Errorf("tool round budget exhausted after %d rounds", c.maxToolRounds)
}

// round streams a single model turn, emitting text deltas as they
// arrive and a tool-call chunk per completed tool_use block.
func (c *Client) round(ctx context.Context, params anthropic.MessageNewParams, s *stream) (*anthropic.Message, bool) {
	sdk := c.client.Messages.NewStreaming(ctx, params)
	defer sdk.Close()

	var msg anthropic.Message
	for sdk.Next() {
		event := sdk.Current()
		if err := msg.Accumulate(event); err != nil {
			s.err = fmt.Errorf("accumulate event: %w", err)
			return nil, false
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				if !s.emit(ctx, chat.Chunk{Kind: chat.KindTextDelta, Text: delta.Text}) {
					s.err = ctx.Err()
					return nil, false
				}
			}

		case anthropic.ContentBlockStopEvent:
			// Tool input arrives as partial JSON deltas; the block is
			// only complete at its stop event.
			if int(ev.Index) >= len(msg.Content) {
				continue
			}
			block := msg.Content[ev.Index]
			if block.Type != "tool_use" {
				continue
			}
			payload, err := json.Marshal(toolCallPayload{
				ID:    block.ID,
				Name:  block.Name,
				Input: block.Input,
			})
			if err != nil {
				s.err = fmt.Errorf("encode tool call: %w", err)
				return nil, false
			}
			if !s.emit(ctx, chat.Chunk{Kind: chat.KindToolCall, Payload: payload}) {
				s.err = ctx.Err()
				return nil, false
			}
		}
	}

	if err := sdk.Err(); err != nil {
		s.err = fmt.Errorf("model stream: %w", err)
		return nil, false
	}
	return &msg, true
}

// executeTools runs every tool_use block of a turn, emits a tool-result
// chunk per execution, and returns the result blocks to send back to
// the model. Tool failures are reported to the model, not fatal to the
// stream.
func (c *Client) executeTools(ctx context.Context, msg *anthropic.Message, s *stream) ([]anthropic.ContentBlockParamUnion, bool) {
	var blocks []anthropic.ContentBlockParamUnion
	for _, block := range msg.Content {
		if block.Type != "tool_use" {
			continue
		}

		content, isError := c.runTool(ctx, block.Name, block.Input)
		payload, err := json.Marshal(toolResultPayload{
			ToolUseID: block.ID,
			Name:      block.Name,
			Content:   content,
			IsError:   isError,
		})
		if err != nil {
			s.err = fmt.Errorf("encode tool result: %w", err)
			return nil, false
		}
		if !s.emit(ctx, chat.Chunk{Kind: chat.KindToolResult, Payload: payload}) {
			s.err = ctx.Err()
			return nil, false
		}
		blocks = append(blocks, anthropic.NewToolResultBlock(block.ID, content, isError))
	}
	return blocks, true
}

func (c *Client) runTool(ctx context.Context, name string, input json.RawMessage) (content string, isError bool) {
	tool, ok := c.registry.Get(name)
	if !ok {
		return fmt.Sprintf("unknown tool %q", name), true
	}
	out, err := tool.Execute(ctx, input)
	if err != nil {
		c.logger.Warn(ctx, "tool execution failed", "tool", name, "error", err.Error())
		return "tool error: " + err.Error(), true
	}
	return string(out), false
}

type toolCallPayload struct {
	ID    string          `json:"tool_use_id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type toolResultPayload struct {
	ToolUseID string `json:"tool_use_id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

func toSDKTools(defs []tools.ToolDef) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		var schema struct {
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		}
		// Tool schemas are authored in-repo; a parse failure surfaces
		// as an empty schema rather than a dropped tool.
		_ = json.Unmarshal(d.InputSchema, &schema)

		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        d.Name,
				Description: anthropic.String(d.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema.Properties,
					Required:   schema.Required,
				},
			},
		})
	}
	return out
}
