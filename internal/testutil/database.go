package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"storyhub/internal/database"
)

// NewTestDatabase creates a migrated SQLite database in a temporary
// directory. The database is automatically closed when the test completes.
func NewTestDatabase(t testing.TB) *database.Database {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// SeedUser creates a user with password "secret".
func SeedUser(t testing.TB, db *database.Database, username string, role database.Role) *database.User {
	t.Helper()

	user, err := db.CreateUser(context.Background(), username, "secret", role)
	if err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

// SeedAuthor creates an author-role user and returns it with its profile.
func SeedAuthor(t testing.TB, db *database.Database, username string) (*database.User, *database.Author) {
	t.Helper()

	user := SeedUser(t, db, username, database.RoleAuthor)
	author, err := db.GetAuthorByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to load author for %q: %v", username, err)
	}
	return user, author
}

// SeedBook creates a book owned by author.
func SeedBook(t testing.TB, db *database.Database, author *database.Author, title string) *database.Book {
	t.Helper()

	book, err := db.CreateBook(context.Background(), author, title, "")
	if err != nil {
		t.Fatalf("failed to create book %q: %v", title, err)
	}
	return book
}

// SeedAlbum creates an album owned by author.
func SeedAlbum(t testing.TB, db *database.Database, author *database.Author, title string) *database.Album {
	t.Helper()

	album, err := db.CreateAlbum(context.Background(), author, title, "")
	if err != nil {
		t.Fatalf("failed to create album %q: %v", title, err)
	}
	return album
}
