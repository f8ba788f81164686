package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cagandemirsamli/personalassistant/agent"
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/domain/expense"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/runner"
	"github.com/cagandemirsamli/personalassistant/store"
)

func lastUserText(req model.Request) string {
	for i := len(req.Contents) - 1; i >= 0; i-- {
		if req.Contents[i].Role == "user" {
			return req.Contents[i].Text()
		}
	}
	return ""
}

func functionResponses(t *testing.T, r *Router, sessionID string) []core.FunctionResponse {
	t.Helper()
	sess, err := r.SessionStore().Get(sessionID)
	require.NoError(t, err)
	var out []core.FunctionResponse
	for _, ev := range sess.Events {
		out = append(out, ev.GetFunctionResponses()...)
	}
	return out
}

func TestProcess_ForwardsOriginalRequest(t *testing.T) {
	routerLLM := model.NewMockModel("router", "mock").
		QueueFunctionCall("route_to_academic", map[string]any{"user_request": "add hw for CS101"})
	domainLLM := model.NewMockModel("academic", "mock").QueueText("Assignment added.")
	expenseLLM := model.NewMockModel("expense", "mock")

	r := New(routerLLM, map[Route]core.Agent{
		RouteAcademic: agent.NewModelAgent("AcademicAgent", domainLLM),
		RouteExpense:  agent.NewModelAgent("ExpenseAgent", expenseLLM),
	})

	original := "Please add CS101 homework 3, due 2025-12-01!"
	got, err := r.Process(context.Background(), original, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Assignment added.", got)

	assert.Equal(t, 1, routerLLM.Calls())
	assert.Equal(t, 0, expenseLLM.Calls())
	reqs := domainLLM.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, original, lastUserText(reqs[0]))
	for _, c := range reqs[0].Contents {
		for _, p := range c.Parts {
			_, isCall := p.(core.FunctionCallPart)
			assert.False(t, isCall, "router tool calls must not leak into the domain history")
		}
	}
}

func TestProcess_GreetingStaysGeneral(t *testing.T) {
	routerLLM := model.NewMockModel("router", "mock").
		QueueFunctionCall("general_response", map[string]any{"response": "Hi!"}).
		QueueText("Hello! I can track expenses, assignments, projects and email.")
	domainLLM := model.NewMockModel("expense", "mock")

	r := New(routerLLM, map[Route]core.Agent{RouteExpense: agent.NewModelAgent("ExpenseAgent", domainLLM)})

	got, err := r.Process(context.Background(), "hello", "s1")
	require.NoError(t, err)
	assert.Equal(t, "Hello! I can track expenses, assignments, projects and email.", got)
	assert.Equal(t, 0, domainLLM.Calls())
	assert.Equal(t, 2, routerLLM.Calls())
}

func TestProcess_NoDecision(t *testing.T) {
	routerLLM := model.NewMockModel("router", "mock").QueueText("Which course do you mean?")
	r := New(routerLLM, nil)

	got, err := r.Process(context.Background(), "add it", "s1")
	require.NoError(t, err)
	assert.Equal(t, "Which course do you mean?", got)
}

func TestProcess_UnregisteredRouteFallsBack(t *testing.T) {
	routerLLM := model.NewMockModel("router", "mock").
		QueueFunctionCall("route_to_email", map[string]any{"user_request": "check mail"})
	r := New(routerLLM, nil)

	got, err := r.Process(context.Background(), "check mail", "s1")
	require.NoError(t, err)
	assert.Equal(t, Fallback, got)
	assert.Empty(t, r.Routes())
}

func TestProcess_FirstDispatchWins(t *testing.T) {
	routerLLM := model.NewMockModel("router", "mock").QueueFunctionCalls(
		core.FunctionCall{Name: "route_to_project", Arguments: `{"user_request":"x"}`},
		core.FunctionCall{Name: "route_to_expense", Arguments: `{"user_request":"x"}`},
	)
	projectLLM := model.NewMockModel("project", "mock").QueueText("Projects: none.")
	expenseLLM := model.NewMockModel("expense", "mock")

	r := New(routerLLM, map[Route]core.Agent{
		RouteProject: agent.NewModelAgent("ProjectAgent", projectLLM),
		RouteExpense: agent.NewModelAgent("ExpenseAgent", expenseLLM),
	})

	got, err := r.Process(context.Background(), "show my projects", "s1")
	require.NoError(t, err)
	assert.Equal(t, "Projects: none.", got)
	assert.Equal(t, 0, expenseLLM.Calls())

	resps := functionResponses(t, r, "s1")
	require.Len(t, resps, 2)
	assert.Equal(t, "Routing to Project Agent: x", resps[0].Response)
	assert.Equal(t, AlreadyDecided, resps[1].Response)
}

func TestProcess_OracleFailure(t *testing.T) {
	routerLLM := model.NewMockModel("router", "mock").QueueError(errors.New("api down"))
	r := New(routerLLM, nil)

	_, err := r.Process(context.Background(), "hello", "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, runner.ErrAgentFailed)
}

func TestProcess_CoffeeEndToEnd(t *testing.T) {
	now := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	s := store.New(t.TempDir())
	tools := expense.NewTools(s, func(o *expense.Options) { o.Now = func() time.Time { return now } })

	routerLLM := model.NewMockModel("router", "mock").
		QueueFunctionCall("route_to_expense", map[string]any{"user_request": "coffee 150"})
	expenseLLM := model.NewMockModel("expense", "mock").
		QueueFunctionCall("add_expense", map[string]any{"category": "coffee", "amount": 150}).
		QueueText("Logged 150 TL for coffee.")

	r := New(routerLLM, map[Route]core.Agent{RouteExpense: expense.NewAgent(expenseLLM, tools)},
		func(o *Options) { o.Now = func() time.Time { return now } })

	got, err := r.Process(context.Background(), "I spent 150 TL on coffee", "PersonalAssistant")
	require.NoError(t, err)
	assert.Equal(t, "Logged 150 TL for coffee.", got)
	assert.Equal(t, store.Collection{
		"COFFEE": []any{map[string]any{"date": "2025-11-24", "amount": 150.0}},
	}, s.Load(expense.ExpenseDocument))

	assert.Contains(t, routerLLM.Requests()[0].Instructions, "CURRENT DATE: Monday, November 24, 2025")
	assert.Equal(t, []Route{RouteExpense}, r.Routes())
}
