package core

// Agent defines the interface that every runnable agent implements.
//
// Agents receive a RunContext, call the model and tools as needed and emit
// events through the context. Implementations must:
//   - Respect context cancellation for graceful shutdown
//   - Emit events through the provided RunContext
//   - Wait for the resume signal after each non-partial event so the runner
//     can persist it before the next model call reads session history
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
}

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes implementation (e.g. "router", "domain").
type AgentInfo struct{ Name, Type string }
