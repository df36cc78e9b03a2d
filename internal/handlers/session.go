package handlers

import (
	"net/http"
	"time"

	"storyhub/internal/authz"
	"storyhub/internal/logging"
	"storyhub/internal/session"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "storyhub_session"

var sessionlessPaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
	"/version": true,
}

// SessionMiddleware resolves the session cookie into an actor once per
// request and stores it in the request context. Unknown or expired tokens
// are treated as anonymous and their cookie is cleared. A backend failure
// also continues anonymously but leaves the cookie in place.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionlessPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := h.resolver.CurrentActor(r.Context(), cookie.Value)
		if err != nil {
			// The token may still be valid; keep the cookie for the next request.
			logging.Warn("Session lookup failed, continuing anonymously: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if actor == nil {
			clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(authz.NewContext(r.Context(), actor)))
	})
}

func setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
