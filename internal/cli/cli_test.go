package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cagandemirsamli/personalassistant/config"
	"github.com/cagandemirsamli/personalassistant/domain/expense"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/store"
)

func scripted(m *model.MockModel) modelFactory {
	return func(*config.Config, logging.Logger) (model.Model, error) { return m, nil }
}

func executeCLI(t *testing.T, models modelFactory, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ASSISTANT_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd(models)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := executeCLI(t, nil, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestConfigPrintsYAML(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("ASSISTANT_DATA_DIR", dataDir)

	out, err := executeCLI(t, nil, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: "+dataDir)
	assert.Contains(t, out, "provider: openai")
}

func TestAskRoutesToDomain(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("ASSISTANT_DATA_DIR", dataDir)

	llm := model.NewMockModel("m", "mock").
		QueueFunctionCall("route_to_expense", map[string]any{"user_request": "coffee"}).
		QueueFunctionCall("add_expense", map[string]any{"category": "coffee", "amount": 150, "date": "2025-11-24"}).
		QueueText("Added 150 TL for coffee.")

	out, err := executeCLI(t, scripted(llm), "", "ask", "--session", "test", "I", "spent", "150", "TL", "on", "coffee")
	require.NoError(t, err)
	assert.Equal(t, "Added 150 TL for coffee.\n", out)

	assert.Equal(t, store.Collection{
		"COFFEE": []any{map[string]any{"date": "2025-11-24", "amount": 150.0}},
	}, store.New(dataDir).Load(expense.ExpenseDocument))
	assert.Equal(t, "I spent 150 TL on coffee", lastUser(llm.Requests()[1]))
}

func TestAskReportsModelFailure(t *testing.T) {
	t.Setenv("ASSISTANT_DATA_DIR", t.TempDir())
	t.Setenv("ASSISTANT_SESSION_DRIVER", "memory")

	llm := model.NewMockModel("m", "mock").QueueError(errors.New("api down"))
	_, err := executeCLI(t, scripted(llm), "", "ask", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api down")
}

func TestChatLoop(t *testing.T) {
	t.Setenv("ASSISTANT_DATA_DIR", t.TempDir())
	t.Setenv("ASSISTANT_SESSION_DRIVER", "memory")

	llm := model.NewMockModel("m", "mock").
		QueueFunctionCall("general_response", map[string]any{"response": "Hi!"}).
		QueueText("Hi! How can I help?").
		QueueError(errors.New("api down"))

	out, err := executeCLI(t, scripted(llm), "hello\n\n  \nwhat now\nQUIT\nnever sent\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Assistant: Hi! How can I help?")
	assert.Contains(t, out, "Assistant: "+apologize)
	assert.Contains(t, out, "Goodbye!")
	assert.Equal(t, 3, llm.Calls())
}

func lastUser(req model.Request) string {
	for i := len(req.Contents) - 1; i >= 0; i-- {
		if req.Contents[i].Role == "user" {
			return req.Contents[i].Text()
		}
	}
	return ""
}

func TestNewModel(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic"} {
		cfg := &config.Config{Model: config.ModelConfig{Provider: provider, Name: "x", MaxTokens: 10}}
		m, err := newModel(cfg, logging.NoOpLogger{})
		require.NoError(t, err)
		assert.Equal(t, provider, m.Info().Provider)
	}

	_, err := newModel(&config.Config{Model: config.ModelConfig{Provider: "llama"}}, logging.NoOpLogger{})
	assert.Error(t, err)
}
