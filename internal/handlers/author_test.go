package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"storyhub/internal/database"
	"storyhub/internal/metrics"
	tu "storyhub/internal/testutil"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

func TestAnonymousIsSentToLogin(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method   string
		path     string
		location string
	}{
		{http.MethodGet, "/favorites", "/login?next=%2Ffavorites"},
		{http.MethodGet, "/settings", "/login?next=%2Fsettings"},
		{http.MethodPost, "/favorite/toggle/1", "/login?next=%2Ffavorite%2Ftoggle%2F1"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.do(request{method: tt.method, target: tt.path, form: url.Values{}})
			assertRedirect(t, w, tt.location)
			assertFlash(t, w, flashWarning, "Please log in first.")
		})
	}
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)
	reader := tu.SeedUser(t, s.db, "rita", database.RoleReader)
	author, _ := tu.SeedAuthor(t, s.db, "alice")

	tests := []struct {
		name   string
		method string
		path   string
		cookie *http.Cookie
	}{
		{"anonymous dashboard", http.MethodGet, "/author/dashboard", nil},
		{"reader dashboard", http.MethodGet, "/author/dashboard", s.loginAs(reader)},
		{"reader creates book", http.MethodPost, "/author/book/create", s.loginAs(reader)},
		{"anonymous admin", http.MethodGet, "/admin", nil},
		{"author admin", http.MethodGet, "/admin", s.loginAs(author)},
		{"author export", http.MethodPost, "/admin/export", s.loginAs(author)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.GuardDenialsTotal.WithLabelValues("forbidden")
			before := testutil.ToFloat64(counter)

			req := request{method: tt.method, target: tt.path, form: url.Values{"title": {"Nope"}, "album_id": {"1"}}}
			if tt.cookie != nil {
				req.cookies = []*http.Cookie{tt.cookie}
			}
			w := s.do(req)

			assertRedirect(t, w, "/")
			if f := setFlashes(w); len(f) != 1 || f[0].Category != flashDanger {
				t.Errorf("flashes = %+v, want one danger message", f)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("forbidden denials recorded = %v, want 1", got)
			}
		})
	}

	if n, _ := s.db.CountBooks(context.Background()); n != 0 {
		t.Errorf("books = %d, want 0 after denied writes", n)
	}
}

// contentCounts snapshots everything an author route could write.
type contentCounts struct {
	books, albums, chapters, bookNotes, albumNotes int
}

func countContent(t *testing.T, db *database.Database, book *database.Book, album *database.Album) contentCounts {
	t.Helper()
	ctx := context.Background()

	var c contentCounts
	var err error
	if c.books, err = db.CountBooks(ctx); err != nil {
		t.Fatalf("CountBooks: %v", err)
	}
	if c.albums, err = db.CountAlbums(ctx); err != nil {
		t.Fatalf("CountAlbums: %v", err)
	}
	chapters, err := db.ListChapters(ctx, book.ID)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	bookNotes, err := db.ListNotesByBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("ListNotesByBook: %v", err)
	}
	albumNotes, err := db.ListNotesByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListNotesByAlbum: %v", err)
	}
	c.chapters, c.bookNotes, c.albumNotes = len(chapters), len(bookNotes), len(albumNotes)
	return c
}

func TestNonAuthorsCannotMutateAuthorContent(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	reader := tu.SeedUser(t, s.db, "rita", database.RoleReader)
	_, alice := tu.SeedAuthor(t, s.db, "alice")
	book := tu.SeedBook(t, s.db, alice, "Tides")
	album := tu.SeedAlbum(t, s.db, alice, "Sketches")
	chapter, err := s.db.CreateChapter(ctx, book, "One", "text")
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}
	bookNote, err := s.db.CreateNote(ctx, "margin", &book.ID, nil)
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if _, err := s.db.CreateNote(ctx, "caption", nil, &album.ID); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	routes := []struct {
		path string
		form url.Values
	}{
		{"/author/book/create", url.Values{"title": {"Nope"}}},
		{"/author/album/create", url.Values{"title": {"Nope"}}},
		{"/author/book/" + id(book.ID) + "/chapter/create", url.Values{"title": {"Nope"}, "content": {"x"}}},
		{"/author/chapter/" + id(chapter.ID) + "/delete", url.Values{}},
		{"/author/note/create", url.Values{"content": {"Nope"}, "book_id": {id(book.ID)}, "album_id": {id(album.ID)}}},
		{"/author/note/" + id(bookNote.ID) + "/delete", url.Values{}},
	}
	actors := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"anonymous", nil},
		{"reader", s.loginAs(reader)},
	}

	want := countContent(t, s.db, book, album)

	for _, actor := range actors {
		for _, route := range routes {
			t.Run(actor.name+" "+route.path, func(t *testing.T) {
				counter := metrics.GuardDenialsTotal.WithLabelValues("forbidden")
				before := testutil.ToFloat64(counter)

				req := request{method: http.MethodPost, target: route.path, form: route.form}
				if actor.cookie != nil {
					req.cookies = []*http.Cookie{actor.cookie}
				}
				w := s.do(req)

				assertRedirect(t, w, "/")
				assertFlash(t, w, flashDanger, "Only authors can use this feature.")
				if got := testutil.ToFloat64(counter) - before; got != 1 {
					t.Errorf("forbidden denials recorded = %v, want 1", got)
				}
				if got := countContent(t, s.db, book, album); got != want {
					t.Errorf("content changed after denied request: %+v, want %+v", got, want)
				}
			})
		}
	}

	if _, err := s.db.GetChapter(ctx, chapter.ID); err != nil {
		t.Errorf("chapter should survive denied deletes: %v", err)
	}
	if _, err := s.db.GetNote(ctx, bookNote.ID); err != nil {
		t.Errorf("note should survive denied deletes: %v", err)
	}
}

func TestAuthorDashboardCreatesMissingProfile(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	user, profile := tu.SeedAuthor(t, s.db, "alice")
	if err := s.db.DeleteAuthor(ctx, profile.ID); err != nil {
		t.Fatalf("DeleteAuthor: %v", err)
	}

	w := s.get("/author/dashboard", s.loginAs(user))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var data struct {
		Author database.Author  `json:"author"`
		Books  []database.Book  `json:"books"`
		Albums []database.Album `json:"albums"`
	}
	decodeView(t, w, &data)
	if data.Author.PenName != "alice" || data.Author.UserID == nil || *data.Author.UserID != user.ID {
		t.Errorf("author = %+v, want a new profile for alice", data.Author)
	}
	if len(data.Books) != 0 || len(data.Albums) != 0 {
		t.Errorf("new profile has content: %+v", data)
	}
}

func TestAuthorCreatesContent(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	user, alice := tu.SeedAuthor(t, s.db, "alice")
	cookie := s.loginAs(user)

	w := s.do(request{
		method:  http.MethodPost,
		target:  "/author/book/create",
		form:    url.Values{"title": {"  Tides  "}, "description": {"sea stories"}},
		referer: "http://example.com/author/" + id(alice.ID),
		cookies: []*http.Cookie{cookie},
	})
	assertRedirect(t, w, "/author/"+id(alice.ID))
	assertFlash(t, w, flashSuccess, "Book created.")

	books, err := s.db.ListBooksByAuthor(ctx, alice.ID)
	if err != nil || len(books) != 1 || books[0].Title != "Tides" {
		t.Fatalf("books = %+v, err = %v", books, err)
	}
	book := books[0]

	w = s.post("/author/album/create", url.Values{"title": {"Sketches"}}, cookie)
	assertRedirect(t, w, "/author/dashboard")
	assertFlash(t, w, flashSuccess, "Album created.")

	for _, title := range []string{"One", "Two", "Three"} {
		w = s.post("/author/book/"+id(book.ID)+"/chapter/create", url.Values{"title": {title}, "content": {"text"}}, cookie)
		assertRedirect(t, w, "/book/"+id(book.ID))
		assertFlash(t, w, flashSuccess, "Chapter created.")
	}

	chapters, err := s.db.ListChapters(ctx, book.ID)
	if err != nil || len(chapters) != 3 {
		t.Fatalf("chapters = %+v, err = %v", chapters, err)
	}
	for i, ch := range chapters {
		if ch.OrderIndex != i+1 {
			t.Errorf("chapter %q order = %d, want %d", ch.Title, ch.OrderIndex, i+1)
		}
	}

	w = s.get("/chapter/"+id(chapters[1].ID), cookie)
	var view struct {
		Chapter database.Chapter  `json:"chapter"`
		Prev    *database.Chapter `json:"prev"`
		Next    *database.Chapter `json:"next"`
	}
	decodeView(t, w, &view)
	if view.Prev == nil || view.Prev.ID != chapters[0].ID || view.Next == nil || view.Next.ID != chapters[2].ID {
		t.Errorf("neighbors = %+v / %+v", view.Prev, view.Next)
	}

	w = s.post("/author/chapter/"+id(chapters[0].ID)+"/delete", nil, cookie)
	assertRedirect(t, w, "/book/"+id(book.ID))
	assertFlash(t, w, flashInfo, "Chapter deleted.")

	w = s.post("/author/book/"+id(book.ID)+"/chapter/create", url.Values{"title": {"Four"}}, cookie)
	assertRedirect(t, w, "/book/"+id(book.ID))
	chapters, _ = s.db.ListChapters(ctx, book.ID)
	if last := chapters[len(chapters)-1]; last.Title != "Four" || last.OrderIndex != 4 {
		t.Errorf("last chapter = %+v, want Four at 4", last)
	}
}

func TestAuthorValidationFailures(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	user, alice := tu.SeedAuthor(t, s.db, "alice")
	book := tu.SeedBook(t, s.db, alice, "Tides")
	cookie := s.loginAs(user)

	tests := []struct {
		name     string
		path     string
		form     url.Values
		referer  string
		location string
	}{
		{"blank book title", "/author/book/create", url.Values{"title": {"   "}}, "", "/author/dashboard"},
		{"blank book title with referer", "/author/book/create", url.Values{"title": {""}}, "/author/" + id(alice.ID), "/author/" + id(alice.ID)},
		{"blank album title", "/author/album/create", url.Values{"title": {""}}, "", "/author/dashboard"},
		{"blank chapter title", "/author/book/" + id(book.ID) + "/chapter/create", url.Values{"title": {" "}}, "/author/dashboard", "/book/" + id(book.ID)},
		{"blank note", "/author/note/create", url.Values{"content": {""}}, "", "/author/dashboard"},
		{"foreign referer ignored", "/author/album/create", url.Values{"title": {""}}, "https://evil.example/x", "/author/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(request{method: http.MethodPost, target: tt.path, form: tt.form, referer: tt.referer, cookies: []*http.Cookie{cookie}})
			assertRedirect(t, w, tt.location)
			if f := setFlashes(w); len(f) != 1 || f[0].Category != flashWarning {
				t.Errorf("flashes = %+v, want one warning", f)
			}
		})
	}

	books, _ := s.db.ListBooksByAuthor(ctx, alice.ID)
	albums, _ := s.db.ListAlbumsByAuthor(ctx, alice.ID)
	chapters, _ := s.db.ListChapters(ctx, book.ID)
	notes, _ := s.db.ListNotesByAuthor(ctx, alice.ID)
	if len(books) != 1 || len(albums) != 0 || len(chapters) != 0 || len(notes) != 0 {
		t.Errorf("validation failures wrote data: books=%d albums=%d chapters=%d notes=%d",
			len(books), len(albums), len(chapters), len(notes))
	}
}

func TestChapterOwnership(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, alice := tu.SeedAuthor(t, s.db, "alice")
	bobUser, _ := tu.SeedAuthor(t, s.db, "bob")
	book := tu.SeedBook(t, s.db, alice, "Tides")
	chapter, err := s.db.CreateChapter(ctx, book, "One", "")
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}
	bob := s.loginAs(bobUser)

	counter := metrics.GuardDenialsTotal.WithLabelValues("not_owner")
	before := testutil.ToFloat64(counter)

	w := s.post("/author/book/"+id(book.ID)+"/chapter/create", url.Values{"title": {"Hijack"}}, bob)
	assertRedirect(t, w, "/author/dashboard")
	assertFlash(t, w, flashDanger, "You are not the author of this book.")

	w = s.post("/author/chapter/"+id(chapter.ID)+"/delete", nil, bob)
	assertRedirect(t, w, "/")
	assertFlash(t, w, flashDanger, "You are not the author of this chapter's book.")

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("not_owner denials = %v, want 2", got)
	}

	chapters, _ := s.db.ListChapters(ctx, book.ID)
	if len(chapters) != 1 || chapters[0].ID != chapter.ID {
		t.Errorf("chapters = %+v, want the original chapter only", chapters)
	}
}

func TestMissingTargetsAreNotFound(t *testing.T) {
	s := newTestServer(t)
	user, _ := tu.SeedAuthor(t, s.db, "alice")
	cookie := s.loginAs(user)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/book/999"},
		{http.MethodGet, "/chapter/999"},
		{http.MethodGet, "/album/999"},
		{http.MethodGet, "/author/999"},
		{http.MethodPost, "/author/book/999/chapter/create"},
		{http.MethodPost, "/author/chapter/999/delete"},
		{http.MethodPost, "/author/note/999/delete"},
		{http.MethodPost, "/favorite/toggle/999"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.do(request{method: tt.method, target: tt.path, form: url.Values{"title": {"x"}}, cookies: []*http.Cookie{cookie}})
			if w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", w.Code)
			}
		})
	}
}

func TestNotes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	aliceUser, alice := tu.SeedAuthor(t, s.db, "alice")
	bobUser, bob := tu.SeedAuthor(t, s.db, "bob")
	aliceBook := tu.SeedBook(t, s.db, alice, "Tides")
	bobAlbum := tu.SeedAlbum(t, s.db, bob, "Bob's Album")

	aliceCookie := s.loginAs(aliceUser)
	bobCookie := s.loginAs(bobUser)

	w := s.post("/author/note/create", url.Values{"content": {"draft"}, "book_id": {id(aliceBook.ID)}}, aliceCookie)
	assertRedirect(t, w, "/author/dashboard")
	assertFlash(t, w, flashSuccess, "Note added.")

	w = s.post("/author/note/create", url.Values{"content": {"sneaky"}, "album_id": {id(bobAlbum.ID)}}, aliceCookie)
	assertRedirect(t, w, "/author/dashboard")

	bookNotes, _ := s.db.ListNotesByBook(ctx, aliceBook.ID)
	if len(bookNotes) != 1 || bookNotes[0].Content != "draft" {
		t.Fatalf("book notes = %+v", bookNotes)
	}
	albumNotes, _ := s.db.ListNotesByAlbum(ctx, bobAlbum.ID)
	if len(albumNotes) != 0 {
		t.Errorf("note was attached to a foreign album: %+v", albumNotes)
	}

	w = s.post("/author/note/"+id(bookNotes[0].ID)+"/delete", nil, bobCookie)
	assertRedirect(t, w, "/author/dashboard")
	assertFlash(t, w, flashDanger, "You may only delete notes on your own books and albums.")
	if _, err := s.db.GetNote(ctx, bookNotes[0].ID); err != nil {
		t.Errorf("note deleted by non-owner: %v", err)
	}

	w = s.post("/author/note/"+id(bookNotes[0].ID)+"/delete", nil, aliceCookie)
	assertRedirect(t, w, "/author/dashboard")
	assertFlash(t, w, flashInfo, "Note deleted.")
	if _, err := s.db.GetNote(ctx, bookNotes[0].ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("GetNote after delete = %v, want ErrNotFound", err)
	}
}
