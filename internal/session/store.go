package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"storyhub/internal/database"
)

// DefaultTTL is how long a session stays valid without being renewed.
const DefaultTTL = 7 * 24 * time.Hour

// Session is an issued login. Token is the value handed to the client.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// Store issues, resolves and revokes session tokens.
type Store interface {
	Create(ctx context.Context, userID int64) (*Session, error)
	// Lookup returns ok=false without an error for unknown, malformed or
	// expired tokens.
	Lookup(ctx context.Context, token string) (userID int64, ok bool, err error)
	Delete(ctx context.Context, token string) error
}

// Cleaner is implemented by stores that need expired sessions purged.
type Cleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

// SQLStore keeps sessions in the sessions table.
type SQLStore struct {
	db  *database.Database
	ttl time.Duration
}

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *database.Database, ttl time.Duration) *SQLStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SQLStore{db: db, ttl: ttl}
}

func (s *SQLStore) Create(ctx context.Context, userID int64) (*Session, error) {
	sess, err := s.db.CreateSession(ctx, userID, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: sess.Token, UserID: sess.UserID, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *SQLStore) Lookup(ctx context.Context, token string) (int64, bool, error) {
	return s.db.LookupSession(ctx, token)
}

func (s *SQLStore) Delete(ctx context.Context, token string) error {
	return s.db.DeleteSession(ctx, token)
}

// CleanExpired removes expired sessions.
func (s *SQLStore) CleanExpired(ctx context.Context) (int64, error) {
	return s.db.CleanExpiredSessions(ctx)
}

// newToken returns 32 random bytes, hex encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// tokenKey hashes a token so the raw value never reaches the backend.
func tokenKey(token string) (string, bool) {
	b, err := hex.DecodeString(token)
	if err != nil || len(b) == 0 {
		return "", false
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), true
}
