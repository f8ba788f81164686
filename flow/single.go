package flow

// SingleAgentFlow implements a basic execution flow for a standalone agent.
// It wires default processors for instruction resolution and content
// assembly on top of BaseFlow.
type SingleAgentFlow struct{ *BaseFlow }

// NewSingleAgentFlow creates a new basic single-agent flow.
func NewSingleAgentFlow(agent FlowAgent) *SingleAgentFlow {
	baseFlow := NewBaseFlow(agent)

	baseFlow.AddRequestProcessor(NewInstructionsProcessor())
	baseFlow.AddRequestProcessor(NewContentsProcessor())

	return &SingleAgentFlow{BaseFlow: baseFlow}
}
