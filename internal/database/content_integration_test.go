package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBooksIntegration(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, alice := seedAuthor(t, db, "alice")
	_, bob := seedAuthor(t, db, "bob")

	first, err := db.CreateBook(ctx, alice, "Tides", "sea stories")
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	second, err := db.CreateBook(ctx, bob, "Embers", "")
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	got, err := db.GetBook(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetBook failed: %v", err)
	}
	if got.Title != "Tides" || got.Description != "sea stories" || got.Author.PenName != "alice" {
		t.Errorf("GetBook = %+v", got)
	}

	books, err := db.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if len(books) != 2 || books[0].ID != second.ID {
		t.Errorf("ListBooks should return newest first, got %+v", books)
	}

	byAuthor, err := db.ListBooksByAuthor(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListBooksByAuthor failed: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].ID != first.ID {
		t.Errorf("ListBooksByAuthor = %+v", byAuthor)
	}

	if n, _ := db.CountBooks(ctx); n != 2 {
		t.Errorf("CountBooks = %d, want 2", n)
	}

	if _, err := db.GetBook(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBook(999) err = %v, want ErrNotFound", err)
	}
}

func TestSearchBooksIntegration(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, alice := seedAuthor(t, db, "Alice")
	_, bob := seedAuthor(t, db, "Bob")

	if _, err := db.CreateBook(ctx, alice, "The Alice Papers", ""); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if _, err := db.CreateBook(ctx, bob, "Night Trains", ""); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if _, err := db.CreateBook(ctx, bob, "100% Proof", ""); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"alice", 1}, // title and pen name both match, listed once
		{"ALICE", 1},
		{"train", 1},
		{"bob", 2},
		{"%", 1},
		{"_", 0},
		{"zzz", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := db.SearchBooks(ctx, tt.query)
			if err != nil {
				t.Fatalf("SearchBooks failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchBooks(%q) returned %d books, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestChapterOrderingIntegration(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, alice := seedAuthor(t, db, "alice")
	book, err := db.CreateBook(ctx, alice, "Tides", "")
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	var ids []int64
	for i, title := range []string{"One", "Two", "Three"} {
		ch, err := db.CreateChapter(ctx, book, title, "")
		if err != nil {
			t.Fatalf("CreateChapter failed: %v", err)
		}
		if ch.OrderIndex != i+1 {
			t.Errorf("chapter %q OrderIndex = %d, want %d", title, ch.OrderIndex, i+1)
		}
		ids = append(ids, ch.ID)
	}

	// Deleting the middle chapter leaves a gap; the next one continues from max.
	if err := db.DeleteChapter(ctx, ids[1]); err != nil {
		t.Fatalf("DeleteChapter failed: %v", err)
	}
	four, err := db.CreateChapter(ctx, book, "Four", "")
	if err != nil {
		t.Fatalf("CreateChapter failed: %v", err)
	}
	if four.OrderIndex != 4 {
		t.Errorf("OrderIndex after delete = %d, want 4", four.OrderIndex)
	}

	chapters, err := db.ListChapters(ctx, book.ID)
	if err != nil {
		t.Fatalf("ListChapters failed: %v", err)
	}
	want := []int{1, 3, 4}
	if len(chapters) != len(want) {
		t.Fatalf("ListChapters returned %d chapters, want %d", len(chapters), len(want))
	}
	for i, ch := range chapters {
		if ch.OrderIndex != want[i] {
			t.Errorf("chapters[%d].OrderIndex = %d, want %d", i, ch.OrderIndex, want[i])
		}
	}

	got, err := db.GetChapter(ctx, four.ID)
	if err != nil {
		t.Fatalf("GetChapter failed: %v", err)
	}
	if got.Book == nil || got.Book.Author == nil || got.Book.Author.UserID == nil {
		t.Fatalf("GetChapter did not populate book and author: %+v", got)
	}
	if got.Book.Author.ID != alice.ID {
		t.Errorf("chapter author = %d, want %d", got.Book.Author.ID, alice.ID)
	}

	if err := db.DeleteChapter(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteChapter err = %v, want ErrNotFound", err)
	}
}

func TestAlbumsIntegration(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, alice := seedAuthor(t, db, "alice")
	zebra, err := db.CreateAlbum(ctx, alice, "Zebra", "")
	if err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	apple, err := db.CreateAlbum(ctx, alice, "Apple", "")
	if err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}

	albums, err := db.ListAlbums(ctx)
	if err != nil {
		t.Fatalf("ListAlbums failed: %v", err)
	}
	if len(albums) != 2 || albums[0].ID != apple.ID {
		t.Errorf("ListAlbums should be ordered by title, got %+v", albums)
	}

	for i := 0; i < 3; i++ {
		if _, err := db.RecordVisit(ctx, zebra.ID, nil, time.Now()); err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}
	counts, err := db.AlbumVisitCounts(ctx, alice.ID)
	if err != nil {
		t.Fatalf("AlbumVisitCounts failed: %v", err)
	}
	if counts[zebra.ID] != 3 || counts[apple.ID] != 0 {
		t.Errorf("AlbumVisitCounts = %v", counts)
	}
	if _, ok := counts[apple.ID]; !ok {
		t.Error("album without visits missing from counts")
	}
}

func TestNotesIntegration(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, alice := seedAuthor(t, db, "alice")
	_, bob := seedAuthor(t, db, "bob")
	book, _ := db.CreateBook(ctx, alice, "Tides", "")
	album, _ := db.CreateAlbum(ctx, alice, "Sketches", "")
	bobBook, _ := db.CreateBook(ctx, bob, "Embers", "")

	bookNote, err := db.CreateNote(ctx, "draft ideas", &book.ID, nil)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if _, err := db.CreateNote(ctx, "album note", nil, &album.ID); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if _, err := db.CreateNote(ctx, "bob's note", &bobBook.ID, nil); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	loose, err := db.CreateNote(ctx, "no parent", nil, nil)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if _, err := db.CreateNote(ctx, "both", &book.ID, &album.ID); err == nil {
		t.Error("note with both parents should violate the CHECK constraint")
	}

	got, err := db.GetNote(ctx, bookNote.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.Book == nil || got.Book.AuthorID != alice.ID || got.Album != nil {
		t.Errorf("GetNote parents = book %+v album %+v", got.Book, got.Album)
	}

	got, err = db.GetNote(ctx, loose.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.Book != nil || got.Album != nil {
		t.Error("parentless note should have no parents")
	}

	mine, err := db.ListNotesByAuthor(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListNotesByAuthor failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("ListNotesByAuthor returned %d notes, want 2", len(mine))
	}

	byBook, _ := db.ListNotesByBook(ctx, book.ID)
	byAlbum, _ := db.ListNotesByAlbum(ctx, album.ID)
	if len(byBook) != 1 || len(byAlbum) != 1 {
		t.Errorf("notes by book/album = %d/%d, want 1/1", len(byBook), len(byAlbum))
	}

	if err := db.DeleteNote(ctx, bookNote.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if err := db.DeleteNote(ctx, bookNote.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteNote err = %v, want ErrNotFound", err)
	}
}
