// Package cli implements the assistant command tree with cobra: chat, ask,
// config and version. Commands load configuration, wire the router with its
// domain agents, and talk to it through Router.Process.
package cli
