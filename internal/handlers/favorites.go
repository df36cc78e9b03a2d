package handlers

import (
	"net/http"

	"storyhub/internal/authz"
)

// Favorites lists the current user's favorite books.
func (h *Handlers) Favorites(w http.ResponseWriter, r *http.Request) {
	books, err := h.tracker.Favorites(r.Context(), authz.FromContext(r.Context()))
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	h.render(w, r, map[string]interface{}{"favorites": books})
}

// ToggleFavorite flips the favorite state of a book for the current user.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
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

	favorited, err := h.tracker.ToggleFavorite(ctx, authz.FromContext(ctx), book)
	if err != nil {
		h.handleError(w, r, err, bookPath(book.ID))
		return
	}

	if favorited {
		pushFlash(w, r, flashSuccess, "Added to favorites.")
	} else {
		pushFlash(w, r, flashInfo, "Removed from favorites.")
	}
	redirect(w, r, back(r, bookPath(book.ID)))
}
