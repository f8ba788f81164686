package core

import (
	"time"

	"github.com/cagandemirsamli/personalassistant/internal/util"
)

// EventActions encodes side‑effects or orchestration signals attached to an Event.
// All fields are optional pointers / maps so absence can be distinguished from zero values.
// The runner interprets these after persistence.
type EventActions struct {
	SkipSummarization *bool          `json:"skip_summarization,omitempty"`
	StateDelta        map[string]any `json:"state_delta,omitempty"`
}

// Event is the primary unit of communication between agents, the runner and
// callers. After emission it should be treated as immutable. It captures:
//   - Correlation (RunID, ID, Author)
//   - Conversational content (optional role-based Parts)
//   - Orchestration directives (Actions)
//   - Error metadata
//
// Content may be nil for control or error-only events.
type Event struct {
	ID             string            `json:"id"`
	RunID          string            `json:"run_id"`
	Author         string            `json:"author"`
	Actions        EventActions      `json:"actions"`
	Timestamp      time.Time         `json:"timestamp"`
	Content        *Content          `json:"content,omitempty"`
	Partial        *bool             `json:"partial,omitempty"`
	TurnComplete   *bool             `json:"turn_complete,omitempty"`
	ErrorCode      *string           `json:"error_code,omitempty"`
	ErrorMessage   *string           `json:"error_message,omitempty"`
	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
}

// NewEvent creates a bare event authored by 'author' bound to a run.
// Prefer helper constructors for common semantic categories (message, function call/response).
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
		Actions:   EventActions{},
	}
}

// NewMessageEvent creates a non-user assistant message event with a single text part.
func NewMessageEvent(author, message string) Event {
	e := NewEvent("", author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(runID, message string) Event {
	e := NewEvent(runID, "user")
	e.Content = &Content{Role: "user", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserContentEvent creates a user-authored event with arbitrary Content.
func NewUserContentEvent(runID string, content *Content) Event {
	e := NewEvent(runID, "user")
	e.Content = content
	return e
}

// NewFunctionCallEvent represents an agent requesting execution of a named function/tool.
func NewFunctionCallEvent(author, functionName, args string) Event {
	e := NewEvent("", author)
	e.Content = &Content{
		Role: "assistant",
		Parts: []Part{
			FunctionCallPart{
				FunctionCall: FunctionCall{
					ID:        NewID(),
					Name:      functionName,
					Arguments: args,
				},
			},
		},
	}
	return e
}

// NewFunctionResponseEvent records the completion result (or error) of a tool/function invocation.
// If err is non-nil its message is copied into the response.Error field.
func NewFunctionResponseEvent(author, id, functionName string, result any, err error) Event {
	e := NewEvent("", author)
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewErrorEvent creates a content-less event carrying an error code and message.
func NewErrorEvent(runID, author, code, message string) Event {
	e := NewEvent(runID, author)
	e.ErrorCode = &code
	e.ErrorMessage = &message
	return e
}

// NewID generates a new unique identifier for events.
func NewID() string { return util.NewID() }

// IsPartial reports whether this event represents a streaming / incomplete
// fragment that will be followed by additional events composing the final
// assistant turn.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// IsError reports whether the event carries an error.
func (e Event) IsError() bool { return e.ErrorMessage != nil }

// SkipsSummarization reports whether a tool asked to end the turn without a
// follow-up model call.
func (e Event) SkipsSummarization() bool {
	return e.Actions.SkipSummarization != nil && *e.Actions.SkipSummarization
}

// Text returns the concatenated text parts of the event content.
func (e Event) Text() string { return e.Content.Text() }

// GetFunctionCalls returns any FunctionCall parts contained within the event
// content preserving their original order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within the
// event content preserving their original order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse implements heuristic used by higher layers to decide when an
// assistant turn is complete (no pending tool calls/responses, not partial, not skipped summarization).
func (e Event) IsFinalResponse() bool {
	if e.SkipsSummarization() {
		return true
	}

	return len(e.GetFunctionCalls()) == 0 &&
		len(e.GetFunctionResponses()) == 0 &&
		!e.IsPartial()
}
