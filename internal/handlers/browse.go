package handlers

import (
	"net/http"
	"strings"

	"storyhub/internal/authz"
	"storyhub/internal/database"
	"storyhub/internal/logging"
)

// Index lists all books, newest first.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	books, err := h.db.ListBooks(r.Context())
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	h.render(w, r, map[string]interface{}{"books": books})
}

// SearchResult is the search view. Results is null until a query is submitted.
type SearchResult struct {
	Query   string          `json:"query"`
	Results []database.Book `json:"results"`
}

// Search matches books by title or author pen name. GET without q shows an
// empty form, POST (or GET with q) runs the query.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var view SearchResult

	_, hasQuery := r.URL.Query()["q"]
	if r.Method == http.MethodPost || hasQuery {
		view.Query = strings.TrimSpace(r.FormValue("q"))
		results, err := h.content.Search(r.Context(), view.Query)
		if err != nil {
			h.handleError(w, r, err, "/search")
			return
		}
		view.Results = results
	}

	h.render(w, r, view)
}

// Authors lists author profiles by pen name.
func (h *Handlers) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.db.ListAuthors(r.Context())
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	h.render(w, r, map[string]interface{}{"authors": authors})
}

// AlbumStat pairs an album with its total visit count.
type AlbumStat struct {
	database.Album
	Visits int `json:"visits"`
}

// AuthorDetail shows an author's books and albums with visit counts.
func (h *Handlers) AuthorDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	author, err := h.db.GetAuthor(ctx, id)
	if err != nil {
		h.handleError(w, r, err, "/authors")
		return
	}
	books, err := h.db.ListBooksByAuthor(ctx, author.ID)
	if err != nil {
		h.handleError(w, r, err, "/authors")
		return
	}
	albums, err := h.db.ListAlbumsByAuthor(ctx, author.ID)
	if err != nil {
		h.handleError(w, r, err, "/authors")
		return
	}
	counts, err := h.db.AlbumVisitCounts(ctx, author.ID)
	if err != nil {
		h.handleError(w, r, err, "/authors")
		return
	}

	stats := make([]AlbumStat, 0, len(albums))
	for _, album := range albums {
		stats = append(stats, AlbumStat{Album: album, Visits: counts[album.ID]})
	}

	h.render(w, r, map[string]interface{}{
		"author": author,
		"books":  books,
		"albums": stats,
	})
}

// AlbumView shows an album with its notes and records the visit.
func (h *Handlers) AlbumView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	album, err := h.db.GetAlbum(ctx, id)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}

	if _, err := h.tracker.RecordVisit(ctx, album, authz.FromContext(ctx)); err != nil {
		h.handleError(w, r, err, "/")
		return
	}

	notes, err := h.db.ListNotesByAlbum(ctx, album.ID)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}

	h.render(w, r, map[string]interface{}{
		"album": album,
		"notes": notes,
	})
}

// BookDetail shows a book with its chapters and notes.
func (h *Handlers) BookDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	book, err := h.db.GetBook(ctx, id)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	chapters, err := h.content.ListChapters(ctx, book.ID)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	notes, err := h.db.ListNotesByBook(ctx, book.ID)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	favorite, err := h.tracker.IsFavorite(ctx, authz.FromContext(ctx), book)
	if err != nil {
		logging.Warn("Failed to check favorite for book %d: %v", book.ID, err)
	}

	h.render(w, r, map[string]interface{}{
		"book":       book,
		"chapters":   chapters,
		"notes":      notes,
		"isFavorite": favorite,
	})
}

// ChapterDetail shows one chapter with links to its neighbours.
func (h *Handlers) ChapterDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	chapter, err := h.db.GetChapter(ctx, id)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	prev, next, err := h.content.Neighbors(ctx, chapter)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}

	h.render(w, r, map[string]interface{}{
		"chapter": chapter,
		"book":    chapter.Book,
		"prev":    prev,
		"next":    next,
	})
}
