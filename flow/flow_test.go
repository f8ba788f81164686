package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/session"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type testAgent struct {
	name      string
	llm       model.Model
	tools     map[string]tool.Tool
	stream    bool
	outputKey string
	history   int
}

func (a *testAgent) GetName() string     { return a.name }
func (a *testAgent) GetLLM() model.Model { return a.llm }
func (a *testAgent) ResolveInstructions(*core.RunContext) (string, error) {
	return "You are a test assistant.", nil
}
func (a *testAgent) GetTools() map[string]tool.Tool { return a.tools }
func (a *testAgent) IsFunctionCallingEnabled() bool { return true }
func (a *testAgent) IsStreamingEnabled() bool       { return a.stream }
func (a *testAgent) GetOutputKey() string           { return a.outputKey }
func (a *testAgent) MaxHistoryMessages() int {
	if a.history == 0 {
		return 50
	}
	return a.history
}

// runFlow plays the runner's part: it persists every complete event and
// resumes the flow after each one.
func runFlow(t *testing.T, fl Flow, store *session.InMemoryStore, text string, maxCalls int) ([]core.Event, error) {
	t.Helper()

	sess, err := store.Get("sess")
	if err != nil {
		if sess, err = store.Create("sess"); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}
	user := core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: text}}}
	if err := store.AppendEvent("sess", core.NewUserContentEvent("run", &user)); err != nil {
		t.Fatalf("append user event: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	emit := make(chan core.Event)
	resume := make(chan struct{}, 1)
	rc := core.NewRunContext(ctx, "sess", "run", core.AgentInfo{Name: "A", Type: "test"}, user, maxCalls, emit, resume, sess, store, logging.NoOpLogger{})

	done := make(chan error, 1)
	go func() {
		done <- fl.Run(rc)
		close(emit)
	}()

	var events []core.Event
	for ev := range emit {
		if len(ev.Actions.StateDelta) > 0 {
			_ = store.ApplyDelta("sess", ev.Actions.StateDelta)
		}
		events = append(events, ev)
		if ev.IsPartial() {
			continue
		}
		_ = store.AppendEvent("sess", ev)
		select {
		case resume <- struct{}{}:
		default:
		}
	}
	return events, <-done
}

func TestSingleAgentFlow_TextAnswer(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.AddResponse("test message", "Hello! This is a test response.")
	a := &testAgent{name: "A", llm: m}

	events, err := runFlow(t, NewSingleAgentFlow(a), session.NewInMemoryStore(), "test message", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 1 || events[0].Text() != "Hello! This is a test response." {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].TurnComplete == nil || !*events[0].TurnComplete {
		t.Fatalf("final event should complete the turn")
	}

	req := m.Requests()[0]
	if req.Instructions != "You are a test assistant." {
		t.Fatalf("instructions not set: %q", req.Instructions)
	}
	if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
		t.Fatalf("unexpected contents: %+v", req.Contents)
	}
}

func TestBaseFlow_ToolLoop(t *testing.T) {
	m := model.NewMockModel("m", "mock").
		QueueFunctionCall("lookup", map[string]any{"q": "x"}).
		QueueText("done")
	a := &testAgent{name: "A", llm: m, tools: map[string]tool.Tool{
		"lookup": &teMockTool{name: "lookup", result: "found"},
	}}

	events, err := runFlow(t, NewSingleAgentFlow(a), session.NewInMemoryStore(), "find x", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected call, response and answer, got %d events", len(events))
	}
	if len(events[0].GetFunctionCalls()) != 1 || len(events[1].GetFunctionResponses()) != 1 || events[2].Text() != "done" {
		t.Fatalf("unexpected event sequence: %+v", events)
	}
	if events[1].RunID != "run" {
		t.Fatalf("tool event not bound to run: %q", events[1].RunID)
	}

	second := m.Requests()[1]
	last := second.Contents[len(second.Contents)-1]
	if last.Role != "tool" {
		t.Fatalf("tool result not fed back: %+v", second.Contents)
	}
	if len(second.Tools) != 1 || second.Tools[0].Function.Name != "lookup" {
		t.Fatalf("tools not offered: %+v", second.Tools)
	}
}

func TestBaseFlow_MergeFunctionResponses(t *testing.T) {
	m := model.NewMockModel("m", "mock").
		QueueFunctionCalls(
			core.FunctionCall{ID: "fc1", Name: "t1", Arguments: "{}"},
			core.FunctionCall{ID: "fc2", Name: "t2", Arguments: "{}"},
		).
		QueueText("ok")
	a := &testAgent{name: "A", llm: m, tools: map[string]tool.Tool{
		"t1": &teMockTool{name: "t1", delay: 20 * time.Millisecond, result: "r1", actionState: map[string]any{"a": 1}},
		"t2": &teMockTool{name: "t2", delay: 5 * time.Millisecond, result: "r2", actionState: map[string]any{"b": 2}},
	}}
	store := session.NewInMemoryStore()

	events, err := runFlow(t, NewSingleAgentFlow(a), store, "merge", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var toolEvents []core.Event
	for _, ev := range events {
		if len(ev.GetFunctionResponses()) > 0 {
			toolEvents = append(toolEvents, ev)
		}
	}
	if len(toolEvents) != 1 {
		t.Fatalf("expected 1 merged tool event, got %d", len(toolEvents))
	}
	frs := toolEvents[0].GetFunctionResponses()
	if len(frs) != 2 || frs[0].Name != "t1" || frs[1].Name != "t2" {
		t.Fatalf("unexpected order: %+v", frs)
	}

	sess, _ := store.Get("sess")
	if v, _ := sess.GetState("a"); v != 1 {
		t.Fatalf("state delta from t1 not applied: %v", v)
	}
	if v, _ := sess.GetState("b"); v != 2 {
		t.Fatalf("state delta from t2 not applied: %v", v)
	}
}

func TestBaseFlow_SkipSummarizationEndsTurn(t *testing.T) {
	m := model.NewMockModel("m", "mock").
		QueueFunctionCall("dispatch", nil).
		QueueText("never requested")
	a := &testAgent{name: "A", llm: m, tools: map[string]tool.Tool{
		"dispatch": &teMockTool{name: "dispatch", result: "routed", skip: true},
	}}

	events, err := runFlow(t, NewSingleAgentFlow(a), session.NewInMemoryStore(), "route me", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.Calls() != 1 {
		t.Fatalf("expected a single model call, got %d", m.Calls())
	}
	if !events[len(events)-1].SkipsSummarization() {
		t.Fatalf("last event should carry skip summarization")
	}
}

func TestBaseFlow_ModelErrorBecomesErrorEvent(t *testing.T) {
	m := model.NewMockModel("m", "mock").QueueError(errors.New("provider down"))
	a := &testAgent{name: "A", llm: m}

	events, err := runFlow(t, NewSingleAgentFlow(a), session.NewInMemoryStore(), "hi", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 1 || !events[0].IsError() || *events[0].ErrorCode != CodeModelError {
		t.Fatalf("expected MODEL_ERROR event, got %+v", events)
	}
	if *events[0].ErrorMessage != "provider down" {
		t.Fatalf("unexpected message %q", *events[0].ErrorMessage)
	}
}

func TestBaseFlow_ModelCallLimit(t *testing.T) {
	m := model.NewMockModel("m", "mock").
		QueueFunctionCall("lookup", nil).
		QueueText("unreachable")
	a := &testAgent{name: "A", llm: m, tools: map[string]tool.Tool{
		"lookup": &teMockTool{name: "lookup", result: "r"},
	}}

	events, err := runFlow(t, NewSingleAgentFlow(a), session.NewInMemoryStore(), "loop", 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	last := events[len(events)-1]
	if !last.IsError() || *last.ErrorCode != CodeModelCallLimit {
		t.Fatalf("expected model call limit error, got %+v", last)
	}
	if m.Calls() != 1 {
		t.Fatalf("limit should stop the second call, got %d", m.Calls())
	}
}

func TestBaseFlow_UnknownToolReportedToModel(t *testing.T) {
	m := model.NewMockModel("m", "mock").
		QueueFunctionCall("missing", nil).
		QueueText("sorry")
	a := &testAgent{name: "A", llm: m, tools: map[string]tool.Tool{}}

	events, err := runFlow(t, NewSingleAgentFlow(a), session.NewInMemoryStore(), "x", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	frs := events[1].GetFunctionResponses()
	if len(frs) != 1 || frs[0].Error != "tool missing not found" {
		t.Fatalf("unexpected response: %+v", frs)
	}
	if events[2].Text() != "sorry" {
		t.Fatalf("model should see the error and answer")
	}
}

func TestBaseFlow_StreamingAndOutputKey(t *testing.T) {
	m := model.NewMockModel("m", "mock")
	m.AddResponse("hi", "yo")
	a := &testAgent{name: "A", llm: m, stream: true, outputKey: "last_answer"}
	store := session.NewInMemoryStore()

	events, err := runFlow(t, NewSingleAgentFlow(a), store, "hi", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 3 || !events[0].IsPartial() || events[2].IsPartial() {
		t.Fatalf("expected two partials and a final event, got %+v", events)
	}
	if !m.Requests()[0].Stream {
		t.Fatalf("stream flag not forwarded")
	}

	sess, _ := store.Get("sess")
	if v, _ := sess.GetState("last_answer"); v != "yo" {
		t.Fatalf("output key not stored: %v", v)
	}
	// user + final only; partials are not persisted
	if n := len(sess.GetEvents()); n != 2 {
		t.Fatalf("expected 2 persisted events, got %d", n)
	}
}

func TestBaseFlow_NoModel(t *testing.T) {
	a := &testAgent{name: "A"}
	events, err := runFlow(t, NewSingleAgentFlow(a), session.NewInMemoryStore(), "x", 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 1 || *events[0].ErrorCode != CodeFlowError {
		t.Fatalf("expected FLOW_ERROR, got %+v", events)
	}
}
