package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/session"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type teMockTool struct {
	name        string
	delay       time.Duration
	result      any
	err         error
	panicMsg    any
	actionState map[string]any
	skip        bool
}

func (mt *teMockTool) Name() string               { return mt.name }
func (mt *teMockTool) Description() string        { return "mock tool" }
func (mt *teMockTool) Parameters() map[string]any { return map[string]any{} }
func (mt *teMockTool) Call(tc *core.ToolContext, _ map[string]any) (any, error) {
	if mt.delay > 0 {
		select {
		case <-time.After(mt.delay):
		case <-tc.Context().Done():
			return nil, tc.Context().Err()
		}
	}
	if mt.panicMsg != nil {
		panic(mt.panicMsg)
	}
	for k, v := range mt.actionState {
		tc.SetState(k, v)
	}
	if mt.skip {
		tc.SkipSummarization()
	}
	return mt.result, mt.err
}

// helper to make run context
func newTERunContext(t *testing.T) *core.RunContext {
	t.Helper()
	sessSvc := session.NewInMemoryStore()
	sess, _ := sessSvc.Create("sess")
	userContent := core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "msg"}}}

	return core.NewRunContext(context.Background(), "sess", "run", core.AgentInfo{Name: "agent", Type: "test"}, userContent, 10, make(chan core.Event, 100), nil, sess, sessSvc, logging.NoOpLogger{})
}

func TestFunctionExecutor_Single(t *testing.T) {
	tools := map[string]tool.Tool{"one": &teMockTool{name: "one", result: 42}}
	te := NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 4})
	events := te.Execute(newTERunContext(t), "A", tools, []core.FunctionCall{{ID: "1", Name: "one", Arguments: "{}"}})
	if len(events) != 1 {
		t.Fatalf("expected 1 event got %d", len(events))
	}
	fr := events[0].GetFunctionResponses()[0]
	if fr.ID != "1" || fr.Response != 42 || events[0].Author != "A" {
		t.Fatalf("unexpected response: %+v", events[0])
	}
}

func TestFunctionExecutor_ParallelPreservesOrder(t *testing.T) {
	tools := map[string]tool.Tool{
		"slow": &teMockTool{name: "slow", delay: 60 * time.Millisecond, result: "s"},
		"fast": &teMockTool{name: "fast", delay: 5 * time.Millisecond, result: "f"},
	}
	te := NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 2})
	fnCalls := []core.FunctionCall{{ID: "1", Name: "slow", Arguments: "{}"}, {ID: "2", Name: "fast", Arguments: "{}"}}

	start := time.Now()
	events := te.Execute(newTERunContext(t), "A", tools, fnCalls)
	elapsed := time.Since(start)

	if len(events) != 2 {
		t.Fatalf("want 2 events got %d", len(events))
	}
	if events[0].GetFunctionResponses()[0].Name != "slow" || events[1].GetFunctionResponses()[0].Name != "fast" {
		t.Fatalf("order not preserved")
	}
	if elapsed > 100*time.Millisecond {
		t.Fatalf("expected parallel speedup, elapsed=%v", elapsed)
	}
}

func TestFunctionExecutor_ErrorIsolation(t *testing.T) {
	tools := map[string]tool.Tool{
		"ok":  &teMockTool{name: "ok", result: "fine"},
		"bad": &teMockTool{name: "bad", err: errors.New("boom")},
	}
	te := NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 2})
	events := te.Execute(newTERunContext(t), "A", tools, []core.FunctionCall{{ID: "1", Name: "ok"}, {ID: "2", Name: "bad"}})

	if events[0].GetFunctionResponses()[0].Error != "" {
		t.Fatalf("ok tool should succeed")
	}
	if events[1].GetFunctionResponses()[0].Error != "boom" {
		t.Fatalf("bad tool error lost: %+v", events[1].GetFunctionResponses())
	}
}

func TestFunctionExecutor_PanicRecovery(t *testing.T) {
	tools := map[string]tool.Tool{"panic": &teMockTool{name: "panic", panicMsg: "boom"}}
	te := NewParallelFunctionExecutor(FunctionExecutorConfig{})
	events := te.Execute(newTERunContext(t), "A", tools, []core.FunctionCall{{ID: "1", Name: "panic", Arguments: "{}"}})
	if got := events[0].GetFunctionResponses()[0].Error; got != "panic recovered: boom" {
		t.Fatalf("expected panic converted to error, got %q", got)
	}
}

func TestFunctionExecutor_BadArguments(t *testing.T) {
	tools := map[string]tool.Tool{"one": &teMockTool{name: "one"}}
	te := NewParallelFunctionExecutor(FunctionExecutorConfig{})
	events := te.Execute(newTERunContext(t), "A", tools, []core.FunctionCall{{ID: "1", Name: "one", Arguments: "{not json"}})
	if events[0].GetFunctionResponses()[0].Error == "" {
		t.Fatalf("malformed arguments should be reported")
	}
}

func TestFunctionExecutor_ActionsApplied(t *testing.T) {
	tools := map[string]tool.Tool{
		"act": &teMockTool{name: "act", actionState: map[string]any{"k": "v"}, skip: true},
	}
	te := NewParallelFunctionExecutor(FunctionExecutorConfig{})
	rc := newTERunContext(t)
	events := te.Execute(rc, "A", tools, []core.FunctionCall{{ID: "1", Name: "act", Arguments: "{}"}})
	if events[0].Actions.StateDelta["k"] != "v" {
		t.Fatalf("state delta missing")
	}
	if !events[0].SkipsSummarization() {
		t.Fatalf("skip summarization missing")
	}
	if len(rc.StateDelta) != 0 {
		t.Fatalf("tool state must stay on the event until it is emitted: %v", rc.StateDelta)
	}
}

func TestMergeFunctionResponseEvents(t *testing.T) {
	a := core.NewFunctionResponseEvent("A", "1", "t1", "r1", nil)
	a.Actions.StateDelta = map[string]any{"x": 1}
	b := core.NewFunctionResponseEvent("A", "2", "t2", "r2", nil)
	skip := true
	b.Actions.SkipSummarization = &skip

	merged := mergeFunctionResponseEvents("run", "A", []core.Event{a, b})
	if merged.Content.Role != "tool" || len(merged.GetFunctionResponses()) != 2 {
		t.Fatalf("unexpected merged content: %+v", merged.Content)
	}
	if merged.Actions.StateDelta["x"] != 1 || !merged.SkipsSummarization() || merged.RunID != "run" {
		t.Fatalf("actions not merged: %+v", merged)
	}
}
