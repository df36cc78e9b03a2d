// Package authz decides who may do what.
//
// The gate checks (RequireAuthenticated, RequireAdmin, RequireAuthor) and the
// ownership checks are pure functions over an Actor and already-loaded
// records. A refusal is returned as a *Denial carrying the reason, a
// user-facing message and the page to redirect to. Callers never see a
// generic error for an access decision.
//
// Ownership is derived through the content tree: a chapter belongs to its
// book's author, and a note belongs to the author of whichever parent (book
// or album) it is attached to.
package authz
