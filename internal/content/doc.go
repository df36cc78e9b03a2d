// Package content manages the author-owned content tree: books and their
// chapters, albums, and notes attached to either.
//
// Inputs are trimmed and validated here; a blank required field yields a
// *ValidationError and nothing is written. Ownership is not checked here.
// Callers run the authz checks first and pass in records they have already
// loaded.
package content
