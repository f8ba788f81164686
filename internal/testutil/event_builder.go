package testutil

import (
	"github.com/cagandemirsamli/personalassistant/core"
)

// EventBuilder constructs events for tests:
//
//	ev := NewEventBuilder().Author("ExpenseAgent").Run("r1").AssistantText("done").Build()
type EventBuilder struct {
	author        string
	runID         string
	id            string
	role          string
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
	partial       *bool
	actions       core.EventActions
	errCode       string
	errMessage    string
}

// NewEventBuilder creates a builder with default author "agent".
func NewEventBuilder() *EventBuilder { return &EventBuilder{author: "agent"} }

// Author sets the event author.
func (b *EventBuilder) Author(a string) *EventBuilder { b.author = a; return b }

// Run sets the run ID.
func (b *EventBuilder) Run(id string) *EventBuilder { b.runID = id; return b }

// ID overrides the generated event ID.
func (b *EventBuilder) ID(id string) *EventBuilder { b.id = id; return b }

// Partial marks the event as a streaming chunk.
func (b *EventBuilder) Partial(p bool) *EventBuilder { b.partial = &p; return b }

// UserText appends a text part and makes the event a user message authored by "user".
func (b *EventBuilder) UserText(t string) *EventBuilder {
	b.role = "user"
	b.author = "user"
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends an assistant text part.
func (b *EventBuilder) AssistantText(t string) *EventBuilder {
	b.role = "assistant"
	b.textParts = append(b.textParts, t)
	return b
}

// FunctionCall adds a function call part with a fixed ID.
func (b *EventBuilder) FunctionCall(id, name, args string) *EventBuilder {
	b.role = "assistant"
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// FunctionResponse adds a tool result part.
func (b *EventBuilder) FunctionResponse(id, name string, result any, err error) *EventBuilder {
	b.role = "tool"
	fr := core.FunctionResponse{ID: id, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	b.funcResponses = append(b.funcResponses, fr)
	return b
}

// SkipSummarization sets the skip summarization action.
func (b *EventBuilder) SkipSummarization() *EventBuilder {
	t := true
	b.actions.SkipSummarization = &t
	return b
}

// StateDelta adds a state change to the event actions.
func (b *EventBuilder) StateDelta(key string, val any) *EventBuilder {
	if b.actions.StateDelta == nil {
		b.actions.StateDelta = map[string]any{}
	}
	b.actions.StateDelta[key] = val
	return b
}

// Error turns the event into an error event.
func (b *EventBuilder) Error(code, message string) *EventBuilder {
	b.errCode, b.errMessage = code, message
	return b
}

// Build returns the event.
func (b *EventBuilder) Build() core.Event {
	ev := core.NewEvent(b.runID, b.author)
	if b.id != "" {
		ev.ID = b.id
	}
	ev.Partial = b.partial
	ev.Actions = b.actions
	if b.errMessage != "" {
		code, msg := b.errCode, b.errMessage
		ev.ErrorCode, ev.ErrorMessage = &code, &msg
	}

	parts := make([]core.Part, 0, len(b.textParts)+len(b.funcCalls)+len(b.funcResponses))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}
	if len(parts) > 0 {
		ev.Content = &core.Content{Role: b.role, Parts: parts}
	}
	return ev
}
