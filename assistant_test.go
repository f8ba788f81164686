package personalassistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/mail"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/orchestrator"
)

func TestAssistant_BudgetWarningThroughRouter(t *testing.T) {
	now := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	llm := model.NewMockModel("m", "mock").
		QueueFunctionCall("route_to_expense", map[string]any{"user_request": "coffee 1700"}).
		QueueFunctionCall("add_expense", map[string]any{"category": "coffee", "amount": 1700}).
		QueueText("Logged. Only 300 TL left for coffee.")

	a := New(llm, func(o *Options) {
		o.DataDir = t.TempDir()
		o.Now = func() time.Time { return now }
	})
	_, err := a.Expense.SetBudget("coffee", 2000)
	require.NoError(t, err)

	reply, err := a.Process(context.Background(), "Spent 1700 TL on coffee", "PersonalAssistant")
	require.NoError(t, err)
	assert.Equal(t, "Logged. Only 300 TL left for coffee.", reply)

	sess, err := a.Router().SessionStore().Get("PersonalAssistant")
	require.NoError(t, err)
	var results []core.FunctionResponse
	for _, ev := range sess.GetEvents() {
		results = append(results, ev.GetFunctionResponses()...)
	}
	require.Len(t, results, 2)
	assert.Equal(t, "Expense of 1700 TL added to 'coffee' on 2025-11-24. ⚠️ Warning: Only 300 TL remaining of 2000 TL budget.", results[1].Response)

	assert.Equal(t, []orchestrator.Route{
		orchestrator.RouteExpense, orchestrator.RouteAcademic, orchestrator.RouteProject, orchestrator.RouteEmail,
	}, a.Router().Routes())
	assert.NotEmpty(t, a.Store().BaseDir())
}

func TestAssistant_EmailProvider(t *testing.T) {
	p := mail.NewMemoryProvider()
	p.AddMailbox("school", "me@uni.edu")

	a := New(model.NewMockModel("m", "mock"), func(o *Options) {
		o.DataDir = t.TempDir()
		o.MailProvider = p
	})

	assert.Equal(t, "Connected to 'school' account: me@uni.edu", a.Email.ConnectAccount(context.Background(), "school"))
	assert.Equal(t, "No unread emails in 'school'.", a.Email.GetUnreadEmails(context.Background(), "school", 0))
}
