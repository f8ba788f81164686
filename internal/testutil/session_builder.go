package testutil

import (
	"github.com/cagandemirsamli/personalassistant/core"
)

// SessionBuilder constructs sessions for tests:
//
//	sess := NewSessionBuilder("s1").State("k", "v").Exchange("ExpenseAgent", "hi", "hello").Build()
type SessionBuilder struct {
	id     string
	state  map[string]any
	events []core.Event
}

// NewSessionBuilder creates a builder for session id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, state: map[string]any{}}
}

// State sets a state key.
func (b *SessionBuilder) State(key string, val any) *SessionBuilder {
	b.state[key] = val
	return b
}

// Events appends events to the history.
func (b *SessionBuilder) Events(evs ...core.Event) *SessionBuilder {
	b.events = append(b.events, evs...)
	return b
}

// Exchange appends a user message followed by agent's text reply.
func (b *SessionBuilder) Exchange(agent, user, reply string) *SessionBuilder {
	return b.Events(
		NewEventBuilder().UserText(user).Build(),
		NewEventBuilder().Author(agent).AssistantText(reply).Build(),
	)
}

// Build returns the session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	for k, v := range b.state {
		s.SetState(k, v)
	}
	for _, ev := range b.events {
		s.AddEvent(ev)
	}
	return s
}
