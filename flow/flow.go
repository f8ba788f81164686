// Package flow drives one agent through the request -> model -> tool loop.
//
// A flow assembles a model.Request with pluggable request processors, calls
// the agent's model, emits the resulting events through the RunContext and
// executes any requested tools before handing their results back to the
// model. The loop ends on a final text answer, when a tool asks to skip
// summarization, or when the per-run model call limit is reached.
package flow

import (
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/tool"
)

// Error codes attached to error events emitted by flows.
const (
	CodeModelError      = "MODEL_ERROR"
	CodeFlowError       = "FLOW_ERROR"
	CodeModelCallLimit  = "MODEL_CALL_LIMIT"
	CodeEmptyResponse   = "EMPTY_RESPONSE"
	CodeProcessorFailed = "PROCESSOR_ERROR"
)

// Flow runs an agent turn against a RunContext. Events reach the caller
// through runCtx.Emit; problems with the model are reported as error events,
// and the returned error is reserved for cancellation and emit failures.
type Flow interface {
	Run(runCtx *core.RunContext) error
}

// FlowAgent is the view of an agent a flow needs.
type FlowAgent interface {
	// GetName returns the agent's display name, used as event author.
	GetName() string

	// GetLLM returns the language model instance.
	GetLLM() model.Model

	// ResolveInstructions produces the system prompt for this run.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// GetTools returns the registered tools for function calling.
	GetTools() map[string]tool.Tool

	// IsFunctionCallingEnabled reports whether tools are offered to the model.
	IsFunctionCallingEnabled() bool

	// IsStreamingEnabled reports whether partial responses are requested.
	IsStreamingEnabled() bool

	// GetOutputKey returns the session state key the final answer is saved under.
	GetOutputKey() string

	// MaxHistoryMessages bounds the conversation window sent to the model.
	MaxHistoryMessages() int
}

// RequestProcessor processes the request before sending it to the LLM.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the request before LLM execution.
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error
}

// ResponseProcessor processes the response after receiving it from the LLM.
type ResponseProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessResponse inspects or rewrites a model response chunk.
	ProcessResponse(runCtx *core.RunContext, resp *model.Response, agent FlowAgent) error
}
