package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"storyhub/internal/handlers"
	"storyhub/internal/session"
	"storyhub/internal/startup"
	tu "storyhub/internal/testutil"
)

func TestNewSessionStoreSQLite(t *testing.T) {
	db := tu.NewTestDatabase(t)
	config := &startup.Config{SessionStore: startup.SessionStoreSQLite, SessionTTL: time.Hour}

	store, closeStore, err := newSessionStore(config, db)
	if err != nil {
		t.Fatalf("newSessionStore failed: %v", err)
	}
	if _, ok := store.(*session.SQLStore); !ok {
		t.Errorf("expected *session.SQLStore, got %T", store)
	}
	if _, ok := store.(session.Cleaner); !ok {
		t.Error("SQL store should support cleanup")
	}
	if err := closeStore(); err != nil {
		t.Errorf("closeStore returned %v", err)
	}
}

func TestNewSessionStoreRedis(t *testing.T) {
	db := tu.NewTestDatabase(t)
	mr := miniredis.RunT(t)
	config := &startup.Config{
		SessionStore: startup.SessionStoreRedis,
		SessionTTL:   time.Hour,
		RedisAddr:    mr.Addr(),
		RedisPrefix:  "test:session",
	}

	store, closeStore, err := newSessionStore(config, db)
	if err != nil {
		t.Fatalf("newSessionStore failed: %v", err)
	}
	defer closeStore()

	if _, ok := store.(*session.RedisStore); !ok {
		t.Errorf("expected *session.RedisStore, got %T", store)
	}
	sess, err := store.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, ok, _ := store.Lookup(context.Background(), sess.Token); !ok {
		t.Error("session should be found in redis")
	}
}

func TestNewSessionStoreRedisUnreachable(t *testing.T) {
	db := tu.NewTestDatabase(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	config := &startup.Config{SessionStore: startup.SessionStoreRedis, RedisAddr: addr}
	if _, _, err := newSessionStore(config, db); err == nil {
		t.Error("expected error for unreachable redis")
	}
}

func TestCleanSessionsStops(t *testing.T) {
	db := tu.NewTestDatabase(t)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		cleanSessions(session.NewSQLStore(db, time.Hour), stop)
		close(done)
	}()
	close(stop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanSessions did not return after stop")
	}
}

func TestSetupRouter(t *testing.T) {
	db := tu.NewTestDatabase(t)
	h := handlers.New(db, session.NewSQLStore(db, time.Hour), time.Hour)
	router := setupRouter(h)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/livez", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/version", http.StatusOK},
		{http.MethodGet, "/no-such-page", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, http.NoBody))
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}
