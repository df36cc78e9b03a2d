package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"storyhub/internal/database"
	"storyhub/internal/testutil"
)

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, s Store, userID int64) {
	t.Helper()
	ctx := context.Background()

	sess, err := s.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.Token == "" || sess.UserID != userID {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt %v is not in the future", sess.ExpiresAt)
	}

	got, ok, err := s.Lookup(ctx, sess.Token)
	if err != nil || !ok || got != userID {
		t.Fatalf("Lookup = (%d, %v, %v), want (%d, true, nil)", got, ok, err, userID)
	}

	other, err := s.Create(ctx, userID)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if other.Token == sess.Token {
		t.Error("two sessions share a token")
	}

	for _, bad := range []string{"", "nothex", "00ff"} {
		if _, ok, err := s.Lookup(ctx, bad); ok || err != nil {
			t.Errorf("Lookup(%q) = (%v, %v), want (false, nil)", bad, ok, err)
		}
	}

	if err := s.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Lookup(ctx, sess.Token); ok {
		t.Error("session still valid after Delete")
	}
	if _, ok, _ := s.Lookup(ctx, other.Token); !ok {
		t.Error("Delete removed an unrelated session")
	}
	if err := s.Delete(ctx, "nothex"); err != nil {
		t.Errorf("Delete(malformed) = %v, want nil", err)
	}
}

func TestSQLStore(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	user, err := db.CreateUser(context.Background(), "rita", "pw", database.RoleReader)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	exerciseStore(t, NewSQLStore(db, time.Hour), user.ID)
}

func TestSQLStoreCleanExpired(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	ctx := context.Background()
	user, err := db.CreateUser(ctx, "rita", "pw", database.RoleReader)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	var cleaner Cleaner = NewSQLStore(db, time.Hour)
	if _, err := db.CreateSession(ctx, user.ID, -time.Minute); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	n, err := cleaner.CleanExpired(ctx)
	if err != nil {
		t.Fatalf("CleanExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("CleanExpired removed %d, want 1", n)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", "", time.Minute)
	defer s.Close()

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	exerciseStore(t, s, 42)
}

func TestRedisStoreKeysAreHashedAndPrefixed(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", "test:sess", time.Minute)
	defer s.Close()

	sess, err := s.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("keys = %v, want exactly one", keys)
	}
	hash, _ := tokenKey(sess.Token)
	if keys[0] != "test:sess:"+hash {
		t.Errorf("key = %q, want prefix plus token hash", keys[0])
	}
	if ttl := mr.TTL(keys[0]); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", "", time.Minute)
	defer s.Close()
	ctx := context.Background()

	sess, err := s.Create(ctx, 7)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, err := s.Lookup(ctx, sess.Token); ok || err != nil {
		t.Errorf("Lookup after TTL = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	s := NewRedisStore(mr.Addr(), "", "", time.Minute)
	defer s.Close()
	mr.Close()

	if _, err = s.Create(context.Background(), 1); err == nil {
		t.Error("Create should fail when Redis is down")
	}
}
