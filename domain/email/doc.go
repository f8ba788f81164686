// Package email exposes a mail.Provider to the model as tools: connecting
// accounts, listing and searching messages, reading one message and flagging
// important unread mail by keyword.
//
// Every failure is reported as text. Fetched message contents are cached
// with go-cache for Options.CacheTTL.
package email
