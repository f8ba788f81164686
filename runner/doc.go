// Package runner executes a single agent against a named session.
//
// The Runner appends the user's message to the session, hands the agent a
// RunContext, persists every complete event the agent emits (applying any
// state delta first) and resumes the agent once the event is stored, so the
// next model call sees up-to-date history.
//
// Run streams events asynchronously; Ask blocks and returns the final
// assistant text. Both the router and the domain agents are driven through
// a Runner, sharing one SessionStore so a conversation keeps a single log.
package runner
