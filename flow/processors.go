package flow

import (
	"fmt"

	"github.com/cagandemirsamli/personalassistant/core"
	internalutil "github.com/cagandemirsamli/personalassistant/internal/util"
	"github.com/cagandemirsamli/personalassistant/model"
)

// InstructionsProcessor handles system prompt and instruction processing.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest resolves the agent instruction and renders it as a
// template over the session state.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	instructions, err := agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	runCtx.LogDebug("agent.instruction.resolved", "agent", agent.GetName(), "length", len(instructions))

	if runCtx.Session == nil {
		req.Instructions = instructions
		return nil
	}

	state := runCtx.Session.Clone().State
	req.Instructions, err = internalutil.RenderTemplate(instructions, state)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return nil
}

// ContentsProcessor copies the conversation window into the request.
//
// Events authored by other agents contribute their text only; their tool
// calls and results belong to a different tool set. The window keeps the
// newest MaxHistoryMessages entries and then starts at a user message so a
// tool result is never separated from the call that produced it.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest sets req.Contents from the session history.
func (p *ContentsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	if runCtx.Session == nil {
		if len(runCtx.UserContent.Parts) > 0 {
			req.Contents = []core.Content{runCtx.UserContent}
		}
		return nil
	}

	var contents []core.Content
	for _, ev := range runCtx.Session.GetConversationHistory() {
		if ev.IsError() {
			continue
		}
		c, ok := visibleContent(ev, agent.GetName())
		if ok {
			contents = append(contents, c)
		}
	}

	req.Contents = trimHistory(contents, agent.MaxHistoryMessages())
	return nil
}

// visibleContent returns the part of ev that agentName should see.
func visibleContent(ev core.Event, agentName string) (core.Content, bool) {
	c := *ev.Content
	if c.Role == "user" || ev.Author == agentName {
		return c, len(c.Parts) > 0
	}
	if c.Role == "tool" {
		return core.Content{}, false
	}

	parts := make([]core.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			parts = append(parts, tp)
		}
	}
	if len(parts) == 0 {
		return core.Content{}, false
	}
	return core.Content{Role: c.Role, Parts: parts}, true
}

// trimHistory keeps the newest max entries (max <= 0 keeps all) and drops
// the leading run up to the first user message. Without a user message in
// the window only leading tool results are dropped.
func trimHistory(contents []core.Content, max int) []core.Content {
	if max <= 0 || len(contents) <= max {
		return contents
	}
	window := contents[len(contents)-max:]
	for i, c := range window {
		if c.Role == "user" {
			return window[i:]
		}
	}
	for len(window) > 0 && window[0].Role == "tool" {
		window = window[1:]
	}
	return window
}
