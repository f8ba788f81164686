// Package session houses concrete implementations of core.SessionStore.
//
// InMemoryStore keeps conversations for the lifetime of the process and is
// what tests use. SQLiteStore persists the same data in a single SQLite file
// so that a named conversation survives restarts of the assistant. The
// wiring layer picks one from configuration; no calling code changes.
package session
