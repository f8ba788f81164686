package core

import (
	"context"
	"errors"

	"github.com/cagandemirsamli/personalassistant/logging"
)

// ToolContext provides a constrained, auditable surface for tool / function
// implementations invoked by an agent. It accumulates EventActions (state
// deltas, skip-summarization signals) without directly mutating the
// underlying session until applied.
type ToolContext struct {
	runCtx         *RunContext
	functionCallID string
	agentInfo      AgentInfo
	eventActions   EventActions

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent RunContext
// and unique functionCallID.
func NewToolContext(runCtx *RunContext, functionCallID string) *ToolContext {
	return &ToolContext{
		runCtx:         runCtx,
		functionCallID: functionCallID,
		agentInfo:      runCtx.Agent,
		eventActions:   EventActions{},
		loggerAdapter:  newLoggerAdapter(runCtx.Logger()),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// SessionID returns the session ID associated with the tool invocation.
func (tc *ToolContext) SessionID() string { return tc.runCtx.SessionID }

// RunID returns the run ID associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the agent name associated with the tool invocation.
func (tc *ToolContext) AgentName() string { return tc.agentInfo.Name }

// AgentType returns the agent type associated with the tool invocation.
func (tc *ToolContext) AgentType() string { return tc.agentInfo.Type }

// GetState returns a value staged by this tool call, else the run's view.
func (tc *ToolContext) GetState(k string) (any, bool) {
	if v, ok := tc.eventActions.StateDelta[k]; ok {
		return v, true
	}
	return tc.runCtx.GetState(k)
}

// SetState stages a mutation in the tool's own EventActions. Tools of one
// turn run concurrently, so the run context is only touched once the
// executor merges the response event.
func (tc *ToolContext) SetState(k string, v any) {
	if tc.eventActions.StateDelta == nil {
		tc.eventActions.StateDelta = map[string]any{}
	}

	tc.eventActions.StateDelta[k] = v
}

// Actions returns the event actions accumulated in the tool context.
func (tc *ToolContext) Actions() *EventActions { return &tc.eventActions }

// SkipSummarization asks the flow to end the turn after this tool's response
// instead of handing the result back to the model.
func (tc *ToolContext) SkipSummarization() {
	b := true
	if tc.eventActions.SkipSummarization == nil {
		tc.eventActions.SkipSummarization = &b
	}
}

// GetSessionHistory returns conversation history (filtered) for context.
func (tc *ToolContext) GetSessionHistory() []Event {
	if tc.runCtx.Session == nil {
		return nil
	}

	return tc.runCtx.Session.GetConversationHistory()
}

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.runCtx == nil || tc.runCtx.SessionID == "" || tc.functionCallID == "" {
		return errors.New("invalid ToolContext")
	}

	return nil
}

// InternalRunContext returns the internal run context.
func (tc *ToolContext) InternalRunContext() *RunContext { return tc.runCtx }

// InternalApplyActions merges accumulated EventActions into the provided event.
// Used by the function executor when finalizing tool response events.
func (tc *ToolContext) InternalApplyActions(ev *Event) {
	if len(tc.eventActions.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		for k, v := range tc.eventActions.StateDelta {
			ev.Actions.StateDelta[k] = v
		}
	}

	if tc.eventActions.SkipSummarization != nil {
		ev.Actions.SkipSummarization = tc.eventActions.SkipSummarization

		tc.LogDebug("tool.skip_summarization", "agent", tc.AgentName(), "function_call_id", tc.functionCallID)
	}
}
