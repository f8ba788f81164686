// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language models (the oracle) inside the assistant.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition, FunctionCallPart)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate deterministic tests (MockModel with a turn script)
//
// Providers (model/openai, model/anthropic) implement the Model interface from this
// package so higher layers (agents, flows, the router) remain decoupled from vendor SDKs.
// model/guard decorates any Model with rate limiting and a circuit breaker.
package model
