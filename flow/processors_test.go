package flow

import (
	"context"
	"testing"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/model"
)

func textContent(role, s string) core.Content {
	return core.Content{Role: role, Parts: []core.Part{core.TextPart{Text: s}}}
}

func TestInstructionsProcessor_RendersState(t *testing.T) {
	sess := core.NewSession("s")
	sess.SetState("user_name", "Ada")
	rc := core.NewRunContext(context.Background(), "s", "r", core.AgentInfo{Name: "A"}, core.Content{}, 0, nil, nil, sess, nil, logging.NoOpLogger{})

	a := &instructionAgent{text: "Hello {{.user_name}}."}
	req := &model.Request{}
	if err := NewInstructionsProcessor().ProcessRequest(rc, req, a); err != nil {
		t.Fatalf("process: %v", err)
	}
	if req.Instructions != "Hello Ada." {
		t.Fatalf("unexpected instructions %q", req.Instructions)
	}
	if NewInstructionsProcessor().Name() != "instructions" {
		t.Errorf("expected name 'instructions'")
	}
}

type instructionAgent struct {
	testAgent
	text string
}

func (a *instructionAgent) ResolveInstructions(*core.RunContext) (string, error) { return a.text, nil }

func TestContentsProcessor_HidesOtherAgentsTools(t *testing.T) {
	sess := core.NewSession("s")
	user := textContent("user", "log coffee")
	sess.AddEvent(core.NewUserContentEvent("r", &user))
	call := core.NewFunctionCallEvent("Router", "route_to_expense", `{"user_request":"log coffee"}`)
	sess.AddEvent(call)
	sess.AddEvent(core.NewFunctionResponseEvent("Router", call.GetFunctionCalls()[0].ID, "route_to_expense", "ok", nil))
	sess.AddEvent(core.NewMessageEvent("Router", "Routing you."))
	sess.AddEvent(core.NewUserContentEvent("r2", &user))

	rc := core.NewRunContext(context.Background(), "s", "r2", core.AgentInfo{Name: "Expense"}, user, 0, nil, nil, sess, nil, logging.NoOpLogger{})
	req := &model.Request{}
	if err := NewContentsProcessor().ProcessRequest(rc, req, &testAgent{name: "Expense"}); err != nil {
		t.Fatalf("process: %v", err)
	}

	roles := []string{}
	for _, c := range req.Contents {
		roles = append(roles, c.Role)
	}
	want := []string{"user", "assistant", "user"}
	if len(roles) != len(want) {
		t.Fatalf("unexpected roles %v", roles)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("unexpected roles %v", roles)
		}
	}
}

func TestTrimHistory_StartsAtUser(t *testing.T) {
	call := core.Content{Role: "assistant", Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "1", Name: "x"}}}}
	result := core.Content{Role: "tool", Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "1", Name: "x"}}}}
	contents := []core.Content{
		textContent("user", "a"),
		call,
		result,
		textContent("assistant", "b"),
		textContent("user", "c"),
		textContent("assistant", "d"),
	}

	got := trimHistory(contents, 4)
	if len(got) != 2 || got[0].Text() != "c" {
		t.Fatalf("expected window to start at the last user message, got %+v", got)
	}

	if got := trimHistory(contents, 0); len(got) != len(contents) {
		t.Fatalf("max 0 keeps everything")
	}

	noUser := []core.Content{textContent("user", "q"), call, result, result, textContent("assistant", "z")}
	got = trimHistory(noUser, 3)
	if len(got) != 1 || got[0].Role != "assistant" {
		t.Fatalf("leading tool results should be dropped, got %+v", got)
	}
}
