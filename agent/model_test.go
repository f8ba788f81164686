package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/session"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type echoArgs struct {
	Text string `json:"text" description:"Text to echo"`
}

func drive(t *testing.T, a *ModelAgent, text string) []core.Event {
	t.Helper()

	store := session.NewInMemoryStore()
	sess, err := store.Create("s")
	require.NoError(t, err)
	user := core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: text}}}
	require.NoError(t, store.AppendEvent("s", core.NewUserContentEvent("r", &user)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	emit := make(chan core.Event)
	resume := make(chan struct{}, 1)
	rc := core.NewRunContext(ctx, "s", "r", core.AgentInfo{Name: a.Name(), Type: "domain"}, user, 5, emit, resume, sess, store, logging.NoOpLogger{})

	done := make(chan error, 1)
	go func() {
		done <- a.Run(rc)
		close(emit)
	}()

	var events []core.Event
	for ev := range emit {
		events = append(events, ev)
		if ev.IsPartial() {
			continue
		}
		require.NoError(t, store.AppendEvent("s", ev))
		resume <- struct{}{}
	}
	require.NoError(t, <-done)
	return events
}

func TestModelAgent_Defaults(t *testing.T) {
	a := NewModelAgent("Expense", model.NewMockModel("m", "mock"))

	assert.Equal(t, "Expense", a.GetName())
	assert.Equal(t, "Agent Expense", a.Description())
	assert.True(t, a.IsFunctionCallingEnabled())
	assert.False(t, a.IsStreamingEnabled())
	assert.Equal(t, 40, a.MaxHistoryMessages())
	assert.Empty(t, a.ListTools())

	instr, err := a.ResolveInstructions(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "You are Expense, a helpful AI assistant.", instr)
}

func TestModelAgent_Options(t *testing.T) {
	echo := tool.NewTypedTool("echo", "Echo text back", func(_ *core.ToolContext, a echoArgs) (string, error) {
		return a.Text, nil
	})
	a := NewModelAgent("Projects", model.NewMockModel("m", "mock"), func(o *ModelAgentOptions) {
		o.Description = "Manages projects"
		o.Instruction = NewInstructionFromText("Be brief.")
		o.EnableStreaming = true
		o.OutputKey = "last_reply"
		o.MaxHistoryMessages = 10
		o.Tools = []tool.Tool{echo}
	})

	assert.Equal(t, "Manages projects", a.Description())
	assert.True(t, a.IsStreamingEnabled())
	assert.Equal(t, "last_reply", a.GetOutputKey())
	assert.Equal(t, 10, a.MaxHistoryMessages())
	assert.True(t, a.HasTool("echo"))
	assert.Equal(t, []string{"echo"}, a.ListTools())

	tools := a.GetTools()
	delete(tools, "echo")
	assert.True(t, a.HasTool("echo"), "GetTools must return a copy")
}

func TestModelAgent_RunWithTool(t *testing.T) {
	echo := tool.NewTypedTool("echo", "Echo text back", func(_ *core.ToolContext, a echoArgs) (string, error) {
		return "echo: " + a.Text, nil
	})
	m := model.NewMockModel("m", "mock").
		QueueFunctionCall("echo", map[string]any{"text": "hi"}).
		QueueText("All done.")

	a := NewModelAgent("Echoer", m, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("Echo things.")
		o.Tools = []tool.Tool{echo}
	})

	events := drive(t, a, "say hi")
	require.Len(t, events, 3)
	assert.Len(t, events[0].GetFunctionCalls(), 1)

	resps := events[1].GetFunctionResponses()
	require.Len(t, resps, 1)
	assert.Equal(t, "echo: hi", resps[0].Response)
	assert.Equal(t, "All done.", events[2].Text())

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Echo things.", reqs[0].Instructions)
	assert.Len(t, reqs[0].Tools, 1)
	// second request carries the call and its result
	assert.Len(t, reqs[1].Contents, 3)
}
