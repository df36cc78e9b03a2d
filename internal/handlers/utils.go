package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"storyhub/internal/accounts"
	"storyhub/internal/authz"
	"storyhub/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// View is the envelope every page is rendered in.
type View struct {
	User    *authz.Actor `json:"user"`
	Flashes []Flash      `json:"flashes"`
	Data    interface{}  `json:"data,omitempty"`
}

// render writes a page view, draining pending flash messages.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, data interface{}) {
	h.renderStatus(w, r, http.StatusOK, data)
}

// renderStatus is render with an explicit status code and extra messages
// that belong to this response rather than the next one.
func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, data interface{}, extra ...Flash) {
	view := View{
		User:    authz.FromContext(r.Context()),
		Flashes: append(popFlashes(w, r), extra...),
		Data:    data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	writeJSON(w, view)
}

// redirect answers a form post with 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// back returns the local Referer path, or fallback.
func back(r *http.Request, fallback string) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return fallback
	}
	if i := strings.Index(ref, "://"); i != -1 {
		rest := ref[i+3:]
		slash := strings.Index(rest, "/")
		if slash == -1 || rest[:slash] != r.Host {
			return fallback
		}
		ref = rest[slash:]
	}
	if safe := accounts.SafeRedirect(ref); safe == ref {
		return ref
	}
	return fallback
}

// pathID parses an integer mux variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formID parses an optional positive integer form field.
func formID(r *http.Request, name string) *int64 {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func bookPath(id int64) string {
	return "/book/" + strconv.FormatInt(id, 10)
}
