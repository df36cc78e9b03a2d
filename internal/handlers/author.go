package handlers

import (
	"errors"
	"net/http"

	"storyhub/internal/authz"
	"storyhub/internal/content"
	"storyhub/internal/database"
)

const dashboardPath = "/author/dashboard"

// AuthorDashboard shows the author's books, albums and notes. A missing
// author profile is created on first visit.
func (h *Handlers) AuthorDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	author, err := h.accounts.AuthorProfile(ctx, authz.FromContext(ctx))
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	books, err := h.db.ListBooksByAuthor(ctx, author.ID)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	albums, err := h.db.ListAlbumsByAuthor(ctx, author.ID)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	notes, err := h.db.ListNotesByAuthor(ctx, author.ID)
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}

	h.render(w, r, map[string]interface{}{
		"author": author,
		"books":  books,
		"albums": albums,
		"notes":  notes,
	})
}

// CreateBook adds a book to the current author's profile.
func (h *Handlers) CreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	author, err := h.accounts.AuthorProfile(ctx, authz.FromContext(ctx))
	if err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	if _, err := h.content.CreateBook(ctx, author, r.FormValue("title"), r.FormValue("description")); err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	pushFlash(w, r, flashSuccess, "Book created.")
	redirect(w, r, back(r, dashboardPath))
}

// CreateAlbum adds an album to the current author's profile.
func (h *Handlers) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	author, err := h.accounts.AuthorProfile(ctx, authz.FromContext(ctx))
	if err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	if _, err := h.content.CreateAlbum(ctx, author, r.FormValue("title"), r.FormValue("description")); err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	pushFlash(w, r, flashSuccess, "Album created.")
	redirect(w, r, back(r, dashboardPath))
}

// CreateChapter appends a chapter to a book owned by the current author.
func (h *Handlers) CreateChapter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	book, err := h.db.GetBook(ctx, id)
	if err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}
	if err := authz.CanCreateChapter(authz.FromContext(ctx), book); err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	if _, err := h.content.CreateChapter(ctx, book, r.FormValue("title"), r.FormValue("content")); err != nil {
		if v, ok := content.AsValidationError(err); ok {
			pushFlash(w, r, flashWarning, v.Message)
			redirect(w, r, bookPath(book.ID))
			return
		}
		h.handleError(w, r, err, bookPath(book.ID))
		return
	}

	pushFlash(w, r, flashSuccess, "Chapter created.")
	redirect(w, r, bookPath(book.ID))
}

// DeleteChapter removes a chapter from a book owned by the current author.
func (h *Handlers) DeleteChapter(w http.ResponseWriter, r *http.Request) {
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
	if err := authz.CanDeleteChapter(authz.FromContext(ctx), chapter); err != nil {
		h.handleError(w, r, err, "/")
		return
	}

	if err := h.content.DeleteChapter(ctx, chapter); err != nil {
		h.handleError(w, r, err, bookPath(chapter.BookID))
		return
	}

	pushFlash(w, r, flashInfo, "Chapter deleted.")
	redirect(w, r, bookPath(chapter.BookID))
}

// CreateNote adds a note. book_id and album_id are optional; references to
// content the author does not own are ignored.
func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	author, err := h.accounts.AuthorProfile(ctx, authz.FromContext(ctx))
	if err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	_, err = h.content.CreateNote(ctx, author, r.FormValue("content"), formID(r, "book_id"), formID(r, "album_id"))
	if err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	pushFlash(w, r, flashSuccess, "Note added.")
	redirect(w, r, back(r, dashboardPath))
}

// DeleteNote removes a note attached to the current author's content.
func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	note, err := h.db.GetNote(ctx, id)
	if err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	author, err := h.db.GetAuthorByUserID(ctx, authz.FromContext(ctx).ID)
	if errors.Is(err, database.ErrNotFound) {
		author, err = nil, nil
	}
	if err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	if err := authz.CanDeleteNote(author, note); err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}
	if err := h.content.DeleteNote(ctx, note); err != nil {
		h.handleError(w, r, err, dashboardPath)
		return
	}

	pushFlash(w, r, flashInfo, "Note deleted.")
	redirect(w, r, dashboardPath)
}
