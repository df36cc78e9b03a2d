// Package database provides SQLite storage for storyhub.
//
// It owns the relational content tree and the records hanging off it:
//   - Users, their sessions and optional author profiles
//   - Books with ordered chapters, albums, and notes attached to either
//   - Favorites (one row per user and book) and the append-only visit log
//
// Referential integrity is enforced by SQLite foreign keys with ON DELETE
// CASCADE, so deleting an author removes every book, chapter, album, note,
// favorite and visit reachable from it. The schema is versioned under
// migrations and applied on open.
package database
