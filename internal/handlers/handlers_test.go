package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"storyhub/internal/authz"
	"storyhub/internal/database"
	"storyhub/internal/session"
	tu "storyhub/internal/testutil"
)

// testServer wires real handlers over a temporary database, the same way
// main does minus the access log and compression.
type testServer struct {
	t      *testing.T
	db     *database.Database
	h      *Handlers
	store  session.Store
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := tu.NewTestDatabase(t)
	store := session.NewSQLStore(db, time.Hour)
	h := New(db, store, time.Hour)

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	return &testServer{t: t, db: db, h: h, store: store, router: h.SessionMiddleware(r)}
}

// loginAs opens a session for user and returns its cookie.
func (s *testServer) loginAs(user *database.User) *http.Cookie {
	s.t.Helper()
	sess, err := s.store.Create(context.Background(), user.ID)
	if err != nil {
		s.t.Fatalf("failed to create session: %v", err)
	}
	return &http.Cookie{Name: SessionCookieName, Value: sess.Token}
}

type request struct {
	method  string
	target  string
	form    url.Values
	referer string
	cookies []*http.Cookie
}

func (s *testServer) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()

	var r *http.Request
	if req.form != nil {
		r = httptest.NewRequest(req.method, req.target, strings.NewReader(req.form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(req.method, req.target, http.NoBody)
	}
	if req.referer != "" {
		r.Header.Set("Referer", req.referer)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *testServer) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return s.do(request{method: http.MethodGet, target: target, cookies: cookies})
}

func (s *testServer) post(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return s.do(request{method: http.MethodPost, target: target, form: form, cookies: cookies})
}

type testView struct {
	User    *authz.Actor    `json:"user"`
	Flashes []Flash         `json:"flashes"`
	Data    json.RawMessage `json:"data"`
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder, data interface{}) testView {
	t.Helper()
	var v testView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode view: %v\n%s", err, w.Body.String())
	}
	if data != nil && len(v.Data) > 0 {
		if err := json.Unmarshal(v.Data, data); err != nil {
			t.Fatalf("failed to decode view data: %v\n%s", err, v.Data)
		}
	}
	return v
}

// setFlashes returns the flash messages a response queued for the next page.
func setFlashes(w *httptest.ResponseRecorder) []Flash {
	for _, c := range w.Result().Cookies() {
		if c.Name == FlashCookieName && c.Value != "" {
			return decodeFlashes(c.Value)
		}
	}
	return nil
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func assertFlash(t *testing.T, w *httptest.ResponseRecorder, category, message string) {
	t.Helper()
	for _, f := range setFlashes(w) {
		if f.Category == category && f.Message == message {
			return
		}
	}
	t.Errorf("flash %s %q not set; got %+v", category, message, setFlashes(w))
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}
