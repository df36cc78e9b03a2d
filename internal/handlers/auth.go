package handlers

import (
	"errors"
	"net/http"

	"storyhub/internal/accounts"
	"storyhub/internal/authz"
	"storyhub/internal/database"
	"storyhub/internal/logging"
)

// LoginPage shows the login form. next is echoed so the form can post it back.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, map[string]string{
		"next": accounts.SafeRedirect(r.URL.Query().Get("next")),
	})
}

// Login authenticates with username and password and redirects to next.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	next := r.FormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}

	_, sess, err := h.accounts.Login(ctx, r.FormValue("username"), r.FormValue("password"))
	if errors.Is(err, database.ErrInvalidCredentials) {
		h.renderStatus(w, r, http.StatusUnauthorized,
			map[string]string{"next": accounts.SafeRedirect(next)},
			Flash{Category: flashDanger, Message: "Invalid username or password."})
		return
	}
	if err != nil {
		h.handleError(w, r, err, "/login")
		return
	}

	setSessionCookie(w, sess)
	pushFlash(w, r, flashSuccess, "Logged in.")
	redirect(w, r, accounts.SafeRedirect(next))
}

// Logout ends the current session
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.accounts.Logout(r.Context(), cookie.Value); err != nil {
			logging.Error("failed to delete session during logout: %v", err)
		}
	}

	clearSessionCookie(w)
	pushFlash(w, r, flashInfo, "Logged out.")
	redirect(w, r, "/")
}

// RegisterPage shows the registration form.
func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, map[string][]database.Role{
		"roles": {database.RoleReader, database.RoleAuthor},
	})
}

// Register creates a reader or author account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	role := r.FormValue("role")
	if role == "" {
		role = string(database.RoleReader)
	}

	_, err := h.accounts.Register(r.Context(), r.FormValue("username"), r.FormValue("password"), role)
	switch {
	case errors.Is(err, accounts.ErrUsernameTaken):
		pushFlash(w, r, flashDanger, "Username already exists.")
		redirect(w, r, "/register")
	case err != nil:
		h.handleError(w, r, err, "/register")
	default:
		pushFlash(w, r, flashSuccess, "Registration successful, please log in.")
		redirect(w, r, "/login")
	}
}

// SettingsPage shows the current user's settings.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	actor := authz.FromContext(r.Context())
	h.render(w, r, map[string]bool{
		"displayAuthorUi": actor.DisplayAuthorUI,
		"canChange":       actor.IsAuthor(),
	})
}

// Settings saves the author interface toggle. Only authors may change it.
func (h *Handlers) Settings(w http.ResponseWriter, r *http.Request) {
	actor := authz.FromContext(r.Context())
	enabled := r.FormValue("display_author_ui") == "on"

	err := h.accounts.UpdateSettings(r.Context(), actor, enabled)
	switch {
	case errors.Is(err, accounts.ErrNotAuthor):
		pushFlash(w, r, flashWarning, "This account is not an author and cannot enable the author interface.")
	case err != nil:
		h.handleError(w, r, err, "/settings")
		return
	default:
		pushFlash(w, r, flashSuccess, "Settings saved.")
	}
	redirect(w, r, "/settings")
}
