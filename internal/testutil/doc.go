// Package testutil holds fluent builders for events and sessions used by the
// package tests. Not for production use.
package testutil
