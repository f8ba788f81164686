package core

import (
	"context"
	"fmt"

	"github.com/cagandemirsamli/personalassistant/logging"
)

type mockSessionStore struct {
	sessions map[string]*Session
	applied  map[string]map[string]any
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]*Session{}, applied: map[string]map[string]any{}}
}

func (m *mockSessionStore) Create(id string) (*Session, error) {
	s := NewSession(id)
	m.sessions[id] = s
	return s, nil
}

func (m *mockSessionStore) Get(id string) (*Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

func (m *mockSessionStore) AppendEvent(id string, ev Event) error {
	if s, ok := m.sessions[id]; ok {
		s.AddEvent(ev)
	}
	return nil
}

func (m *mockSessionStore) ApplyDelta(id string, delta map[string]any) error {
	cp := map[string]any{}
	for k, v := range delta {
		cp[k] = v
	}
	m.applied[id] = cp
	if s, ok := m.sessions[id]; ok {
		s.ApplyStateDelta(delta)
	}
	return nil
}

func newRunContextForTest() (*RunContext, chan Event) {
	emit := make(chan Event, 5)
	resume := make(chan struct{}, 5)
	store := newMockSessionStore()
	sess, _ := store.Create("sess-x")
	return NewRunContext(
		context.Background(), "sess-x", "run-x", AgentInfo{Name: "Agent1", Type: "test"},
		Content{Role: "user", Parts: []Part{TextPart{Text: "Test input"}}},
		25, emit, resume, sess, store, logging.NoOpLogger{},
	), emit
}
