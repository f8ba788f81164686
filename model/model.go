package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cagandemirsamli/personalassistant/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by flows.
type Request struct {
	Instructions string           `json:"instructions"` // Instructions for the model
	Contents     []core.Content   `json:"contents"`     // Higher-level content converted to provider messages
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"` // Indicates if this is a partial response
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by flows & agents to drive generation.
// Implementations close both channels when done and send at most one error.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrScriptExhausted is reported by MockModel when a script was queued and
// every scripted turn has been consumed.
var ErrScriptExhausted = errors.New("mock model script exhausted")

// MockModel is a lightweight in‑memory Model useful for tests & examples.
//
// Turns queued with QueueText, QueueFunctionCall or QueueError are replayed
// in order, one per Generate call. Without a script the model echoes the
// last text content (or a canned reply registered with AddResponse).
type MockModel struct {
	info      Info
	responses map[string]string

	mu       sync.Mutex
	script   []mockTurn
	scripted bool
	requests []Request
}

type mockTurn struct {
	content core.Content
	err     error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// QueueText scripts a turn that answers with plain text.
func (m *MockModel) QueueText(text string) *MockModel {
	return m.queue(mockTurn{content: core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: text}}}})
}

// QueueFunctionCall scripts a turn that requests a single tool call.
func (m *MockModel) QueueFunctionCall(name string, args map[string]any) *MockModel {
	return m.QueueFunctionCalls(core.FunctionCall{Name: name, Arguments: mustJSON(args)})
}

// QueueFunctionCalls scripts a turn that requests several tool calls at once.
// Calls without an ID get a generated one.
func (m *MockModel) QueueFunctionCalls(calls ...core.FunctionCall) *MockModel {
	parts := make([]core.Part, 0, len(calls))
	for _, c := range calls {
		if c.ID == "" {
			c.ID = core.NewID()
		}
		parts = append(parts, core.FunctionCallPart{FunctionCall: c})
	}
	return m.queue(mockTurn{content: core.Content{Role: "assistant", Parts: parts}})
}

// QueueError scripts a turn that fails with err.
func (m *MockModel) QueueError(err error) *MockModel {
	return m.queue(mockTurn{err: err})
}

func (m *MockModel) queue(t mockTurn) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = true
	m.script = append(m.script, t)
	return m
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Generate invocations.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Generate implements Model; emits optional streaming char chunks then final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var (
		turn     mockTurn
		hasTurn  bool
		scripted = m.scripted
	)
	if len(m.script) > 0 {
		turn, hasTurn = m.script[0], true
		m.script = m.script[1:]
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}

		if scripted {
			if !hasTurn {
				errCh <- ErrScriptExhausted
				return
			}
			if turn.err != nil {
				errCh <- turn.err
				return
			}
			respCh <- Response{Content: turn.content, FinishReason: finishReason(turn.content)}
			return
		}

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}
		last := req.Contents[len(req.Contents)-1]
		inputText := last.Text()
		full := m.responses[inputText]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.Content{
						Role:  "assistant",
						Parts: []core.Part{core.TextPart{Text: string(r)}},
					},
				}:
				}
			}
		}
		respCh <- Response{
			Partial: false,
			Content: core.Content{
				Role:  "assistant",
				Parts: []core.Part{core.TextPart{Text: full}},
			},
			FinishReason: "stop",
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

func finishReason(c core.Content) string {
	for _, p := range c.Parts {
		if _, ok := p.(core.FunctionCallPart); ok {
			return "tool_calls"
		}
	}
	return "stop"
}

func mustJSON(v map[string]any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
