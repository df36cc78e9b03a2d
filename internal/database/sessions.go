package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// hashToken returns the stored form of a session token. Tokens that are not
// valid hex cannot have been issued here, so ok is false for them.
func hashToken(token string) (hash string, ok bool) {
	tokenBytes, err := hex.DecodeString(token)
	if err != nil || len(tokenBytes) == 0 {
		return "", false
	}
	sum := sha256.Sum256(tokenBytes)
	return hex.EncodeToString(sum[:]), true
}

// CreateSession issues a new session for userID valid for ttl. Only the
// SHA-256 of the token is stored.
func (d *Database) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*Session, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_session", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tokenBytes := make([]byte, 32)
	if _, err = rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)
	tokenHash, _ := hashToken(token)

	now := time.Now()
	expiresAt := now.Add(ttl)

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)",
		userID, tokenHash, expiresAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, _ := result.LastInsertId()

	return &Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// LookupSession resolves a token to its user id. Unknown, malformed and
// expired tokens report ok=false without an error.
func (d *Database) LookupSession(ctx context.Context, token string) (userID int64, ok bool, err error) {
	start := time.Now()
	defer func() { recordQuery("lookup_session", start, err) }()

	tokenHash, valid := hashToken(token)
	if !valid {
		return 0, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var expiresAt int64
	err = d.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE token = ?", tokenHash,
	).Scan(&userID, &expiresAt)
	if err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			err = nil
		}
		return 0, false, err
	}

	if time.Now().Unix() > expiresAt {
		return 0, false, nil
	}
	return userID, true, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (d *Database) DeleteSession(ctx context.Context, token string) error {
	tokenHash, valid := hashToken(token)
	if !valid {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", tokenHash)
	return err
}

// CleanExpiredSessions removes all expired sessions and returns how many.
func (d *Database) CleanExpiredSessions(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("clean_expired_sessions", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
