package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cagandemirsamli/personalassistant/agent"
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/internal/testutil"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/session"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type noteArgs struct {
	Note string `json:"note"`
}

func newNoteTool() tool.Tool {
	return tool.NewTypedTool("remember", "Remember a note", func(tc *core.ToolContext, a noteArgs) (string, error) {
		tc.SetState("note", a.Note)
		return "Noted.", nil
	})
}

func TestRunner_AskCreatesSessionAndPersists(t *testing.T) {
	store := session.NewInMemoryStore()
	m := model.NewMockModel("m", "mock").
		QueueFunctionCall("remember", map[string]any{"note": "buy milk"}).
		QueueText("I'll remember that.")
	a := agent.NewModelAgent("Notes", m, func(o *agent.ModelAgentOptions) {
		o.Tools = []tool.Tool{newNoteTool()}
	})

	r := New(a, func(o *Options) { o.SessionStore = store })

	reply, err := r.Ask(context.Background(), "chat", "remember to buy milk")
	require.NoError(t, err)
	assert.Equal(t, "I'll remember that.", reply.Text)
	assert.NotEmpty(t, reply.RunID)
	assert.Len(t, reply.Events, 3)

	sess, err := store.Get("chat")
	require.NoError(t, err)
	// user + call + result + answer
	assert.Len(t, sess.GetEvents(), 4)
	note, ok := sess.GetState("note")
	require.True(t, ok)
	assert.Equal(t, "buy milk", note)
}

func TestRunner_AskKeepsHistoryAcrossRuns(t *testing.T) {
	m := model.NewMockModel("m", "mock").QueueText("first").QueueText("second")
	r := New(agent.NewModelAgent("A", m))

	_, err := r.Ask(context.Background(), "s", "one")
	require.NoError(t, err)
	_, err = r.Ask(context.Background(), "s", "two")
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	// one, first, two
	assert.Len(t, reqs[1].Contents, 3)
}

func TestRunner_AskReportsAgentError(t *testing.T) {
	m := model.NewMockModel("m", "mock").QueueError(errors.New("rate limited"))
	r := New(agent.NewModelAgent("A", m))

	reply, err := r.Ask(context.Background(), "s", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentFailed)
	assert.Contains(t, err.Error(), "MODEL_ERROR")
	require.Len(t, reply.Events, 1)
	assert.True(t, reply.Events[0].IsError())
}

func TestRunner_AskNoReply(t *testing.T) {
	skip := tool.NewTypedTool("handoff", "Hand off", func(tc *core.ToolContext, _ struct{}) (string, error) {
		tc.SkipSummarization()
		return "ok", nil
	})
	m := model.NewMockModel("m", "mock").QueueFunctionCall("handoff", nil)
	r := New(agent.NewModelAgent("A", m, func(o *agent.ModelAgentOptions) {
		o.Tools = []tool.Tool{skip}
	}))

	reply, err := r.Ask(context.Background(), "s", "hi")
	assert.ErrorIs(t, err, ErrNoReply)
	assert.Len(t, reply.Events, 2)
}

func TestRunner_AskHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(agent.NewModelAgent("A", model.NewMockModel("m", "mock")))
	_, err := r.Ask(ctx, "s", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_RunStreams(t *testing.T) {
	m := model.NewMockModel("m", "mock")
	m.AddResponse("hello", "hi there")
	r := New(agent.NewModelAgent("A", m))

	runID, events, errs, err := r.Run(context.Background(), "s", core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "hello"}}})
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	var got []core.Event
	timeout := time.After(2 * time.Second)
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			got = append(got, ev)
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			t.Fatalf("unexpected error: %v", e)
		case <-timeout:
			t.Fatal("run did not finish")
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, "hi there", got[0].Text())
	assert.Equal(t, runID, got[0].RunID)
}

func TestRunner_CancelUnknown(t *testing.T) {
	r := New(agent.NewModelAgent("A", model.NewMockModel("m", "mock")))
	assert.Error(t, r.Cancel("nope"))
}

func TestFinalText(t *testing.T) {
	events := []core.Event{
		testutil.NewEventBuilder().UserText("hi").Build(),
		testutil.NewEventBuilder().Author("A").AssistantText("first").Build(),
		testutil.NewEventBuilder().Author("A").AssistantText("thinking").FunctionCall("c1", "x", "{}").Build(),
		testutil.NewEventBuilder().Author("A").AssistantText("draft").Partial(true).Build(),
		testutil.NewEventBuilder().Author("B").AssistantText("other").Build(),
	}
	assert.Equal(t, "first", FinalText("A", events))
	assert.Equal(t, "", FinalText("C", events))
}
