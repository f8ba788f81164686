// Package mail defines the mail capability the email tools are built on and
// two providers for it: MemoryProvider and DirProvider, which reads
// <account>.json mailbox exports from a directory.
//
// Provider authentication and mail API wire calls are outside this package;
// a provider for a real mail service implements the same three methods.
package mail
