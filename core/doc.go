// Package core provides the foundational domain types, interfaces and execution
// contexts shared by the assistant's agents. It defines the abstractions for:
//
//   - Agents (units of model-driven work)
//   - Sessions (stateful conversational containers with event history)
//   - Events (immutable communication + orchestration records)
//   - RunContext / ToolContext (scoped execution & tool sandboxing)
//   - ModelLimiter (per-run model call budget)
//
// Implementation concerns (persistence backends, flows, concrete agents) live in
// other packages; this package only exposes small interfaces so they can be swapped.
package core
