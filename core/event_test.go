package core

import (
	"encoding/json"
	"errors"
	"testing"
)

// Event constructor & helper method tests
func TestEvent_ConstructorsAndMethods(t *testing.T) {
	e := NewEvent("run-123", "authorA")
	if e.Author != "authorA" || e.RunID != "run-123" || e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("NewEvent did not initialize fields correctly: %+v", e)
	}

	msg := NewMessageEvent("agent1", "hello world")
	if msg.Content == nil || msg.Content.Role != "assistant" || msg.Text() != "hello world" {
		t.Fatalf("NewMessageEvent malformed: %+v", msg)
	}

	user := NewUserMessageEvent("run-123", "hi")
	if user.Content == nil || user.Content.Role != "user" || user.Author != "user" {
		t.Fatalf("NewUserMessageEvent malformed: %+v", user)
	}

	callArgs := `{"a":1}`
	fCall := NewFunctionCallEvent("agent2", "do_stuff", callArgs)
	calls := fCall.GetFunctionCalls()
	if len(calls) != 1 || calls[0].Name != "do_stuff" || calls[0].Arguments != callArgs || calls[0].ID == "" {
		t.Fatalf("GetFunctionCalls extraction failed: %+v", calls)
	}

	fRespOK := NewFunctionResponseEvent("agent2", "call-1", "do_stuff", 42, nil)
	resps := fRespOK.GetFunctionResponses()
	if len(resps) != 1 || resps[0].Response.(int) != 42 || resps[0].Error != "" {
		t.Fatalf("Function response success extraction failed: %+v", resps)
	}

	fRespErr := NewFunctionResponseEvent("agent2", "call-2", "do_stuff", nil, errors.New("boom"))
	resps = fRespErr.GetFunctionResponses()
	if resps[0].Error != "boom" {
		t.Fatalf("Expected error message in function response: %+v", resps[0])
	}

	errEv := NewErrorEvent("run-123", "system", "MODEL_ERROR", "down")
	if !errEv.IsError() || *errEv.ErrorCode != "MODEL_ERROR" || errEv.Content != nil {
		t.Fatalf("NewErrorEvent malformed: %+v", errEv)
	}
}

func TestEvent_IsFinalResponseLogic(t *testing.T) {
	e := NewEvent("run", "authorA")
	if !e.IsFinalResponse() {
		t.Error("Expected basic event to be final")
	}

	partial := true
	e2 := NewEvent("run", "agent")
	e2.Partial = &partial
	if e2.IsFinalResponse() {
		t.Error("Partial event should not be final")
	}

	e3 := NewFunctionCallEvent("agent", "f", "")
	if e3.IsFinalResponse() {
		t.Error("Event with function call should not be final")
	}

	e4 := NewFunctionResponseEvent("agent", "call-3", "f", "ok", nil)
	if e4.IsFinalResponse() {
		t.Error("Event with function response should not be final")
	}

	skip := true
	e5 := NewFunctionResponseEvent("agent", "call-4", "f", "ok", nil)
	e5.Actions.SkipSummarization = &skip
	if !e5.IsFinalResponse() {
		t.Error("SkipSummarization should force final")
	}
}

func TestEvent_IDUniqueness(t *testing.T) {
	if NewID() == NewID() {
		t.Error("Expected unique IDs")
	}
}

func TestContent_JSONKeepsPartTypes(t *testing.T) {
	in := Event{
		ID: "e1",
		Content: &Content{Role: "assistant", Parts: []Part{
			TextPart{Text: "checking"},
			FunctionCallPart{FunctionCall: FunctionCall{ID: "c1", Name: "get_budget", Arguments: `{"category":"coffee"}`}},
			FunctionResponsePart{FunctionResponse: FunctionResponse{ID: "c1", Name: "get_budget", Response: "No budgets found."}},
		}},
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Event
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.Text() != "checking" {
		t.Fatalf("text lost: %q", out.Text())
	}
	calls := out.GetFunctionCalls()
	if len(calls) != 1 || calls[0].Arguments != `{"category":"coffee"}` {
		t.Fatalf("function call lost: %+v", calls)
	}
	resps := out.GetFunctionResponses()
	if len(resps) != 1 || resps[0].Response != "No budgets found." {
		t.Fatalf("function response lost: %+v", resps)
	}

	if err := json.Unmarshal([]byte(`{"role":"user","parts":[{"type":"image","data":{}}]}`), &Content{}); err == nil {
		t.Fatal("unknown part types should be rejected")
	}
}
