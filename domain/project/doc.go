// Package project keeps a record per personal project in the projects
// document, keyed by the upper-cased name with spaces replaced by
// underscores.
package project
