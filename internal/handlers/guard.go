package handlers

import (
	"errors"
	"net/http"

	"storyhub/internal/authz"
	"storyhub/internal/content"
	"storyhub/internal/database"
	"storyhub/internal/logging"
	"storyhub/internal/metrics"
)

// handleError maps service errors onto responses. Denials and validation
// failures become a flash plus redirect; fallback is used when the request
// carries no usable Referer.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if d, ok := authz.AsDenial(err); ok {
		h.deny(w, r, d)
		return
	}
	if v, ok := content.AsValidationError(err); ok {
		pushFlash(w, r, flashWarning, v.Message)
		redirect(w, r, back(r, fallback))
		return
	}
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}
	logging.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	writeJSONError(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handlers) deny(w http.ResponseWriter, r *http.Request, d *authz.Denial) {
	metrics.GuardDenialsTotal.WithLabelValues(string(d.Reason)).Inc()
	logging.Debug("Denied %s %s: %s", r.Method, r.URL.Path, d.Reason)

	category := flashDanger
	if d.Reason == authz.Unauthenticated {
		category = flashWarning
	}
	pushFlash(w, r, category, d.Message)
	redirect(w, r, d.Redirect)
}

// requireAuthenticated wraps next so it only runs for logged-in users.
func (h *Handlers) requireAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := authz.RequireAuthenticated(authz.FromContext(r.Context()), r.URL.Path); err != nil {
			h.handleError(w, r, err, "/")
			return
		}
		next(w, r)
	}
}

// requireAuthor wraps next so it only runs for authors.
func (h *Handlers) requireAuthor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := authz.RequireAuthor(authz.FromContext(r.Context())); err != nil {
			h.handleError(w, r, err, "/")
			return
		}
		next(w, r)
	}
}

// requireAdmin wraps next so it only runs for admins.
func (h *Handlers) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := authz.RequireAdmin(authz.FromContext(r.Context())); err != nil {
			h.handleError(w, r, err, "/")
			return
		}
		next(w, r)
	}
}
