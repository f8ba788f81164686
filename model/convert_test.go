package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cagandemirsamli/personalassistant/core"
)

func TestToolResultText(t *testing.T) {
	assert.Equal(t, "ok", ToolResultText(core.FunctionResponse{Response: "ok"}))
	assert.Equal(t, "Error: boom", ToolResultText(core.FunctionResponse{Response: "ok", Error: "boom"}))
	assert.Equal(t, `{"a":1}`, ToolResultText(core.FunctionResponse{Response: map[string]int{"a": 1}}))
	assert.Equal(t, "", ToolResultText(core.FunctionResponse{}))
}

func TestCallIDsAndText(t *testing.T) {
	c := core.Content{Role: "assistant", Parts: []core.Part{
		core.TextPart{Text: "a"},
		core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "1", Name: "x"}},
		core.TextPart{Text: "b"},
		core.FunctionCallPart{FunctionCall: core.FunctionCall{Name: "no-id"}},
		core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "2", Name: "y"}},
	}}
	assert.Equal(t, []string{"1", "2"}, CallIDs(c))
	assert.Equal(t, "ab", TextOf(c))
}
