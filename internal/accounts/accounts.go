// Package accounts handles registration, login and per-user settings.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storyhub/internal/authz"
	"storyhub/internal/content"
	"storyhub/internal/database"
	"storyhub/internal/logging"
	"storyhub/internal/metrics"
	"storyhub/internal/session"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordLength = 72

var (
	// ErrUsernameTaken is returned by Register for a duplicate username or
	// an author pen name that is already in use.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrNotAuthor is returned when a non-author changes author settings.
	ErrNotAuthor = errors.New("only authors can enable the author interface")
)

// Service manages user accounts and their sessions.
type Service struct {
	db       *database.Database
	sessions session.Store
}

// NewService creates an account service.
func NewService(db *database.Database, sessions session.Store) *Service {
	return &Service{db: db, sessions: sessions}
}

// RegistrationRole maps a submitted role to the stored one. Only reader and
// author can be self-selected; anything else becomes reader.
func RegistrationRole(role string) database.Role {
	if database.Role(role) == database.RoleAuthor {
		return database.RoleAuthor
	}
	return database.RoleReader
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return "", &content.ValidationError{Field: "username", Message: "Username and password cannot be empty."}
	}
	if len(password) > maxPasswordLength {
		return "", &content.ValidationError{Field: "password", Message: "Password must not exceed 72 characters."}
	}
	return username, nil
}

// Register creates a reader or author account. Authors get a profile named
// after the username.
func (s *Service) Register(ctx context.Context, username, password, role string) (*database.User, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	user, err := s.db.CreateUser(ctx, username, password, RegistrationRole(role))
	if errors.Is(err, database.ErrConflict) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", username, err)
	}
	logging.Info("Registered %s %q", user.Role, user.Username)
	return user, nil
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*database.User, *session.Session, error) {
	user, err := s.db.ValidateCredentials(ctx, strings.TrimSpace(username), password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			logging.Warn("Failed login attempt for %q", username)
			metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		}
		return nil, nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	logging.Info("User %q logged in", user.Username)
	return user, sess, nil
}

// Logout revokes a session token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// UpdateSettings stores the author UI preference. Only authors may change it.
func (s *Service) UpdateSettings(ctx context.Context, actor *authz.Actor, displayAuthorUI bool) error {
	if !actor.IsAuthor() {
		return ErrNotAuthor
	}
	return s.db.SetDisplayAuthorUI(ctx, actor.ID, displayAuthorUI)
}

// AuthorProfile returns the actor's author profile, creating it on first use
// for authors registered without one.
func (s *Service) AuthorProfile(ctx context.Context, actor *authz.Actor) (*database.Author, error) {
	user, err := s.db.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	author, created, err := s.db.EnsureAuthorForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if created {
		logging.Info("Created missing author profile %q for user %d", author.PenName, user.ID)
	}
	return author, nil
}

// SeedAdmin creates the default admin account if it does not exist and
// reports whether it did.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	return s.db.EnsureAdmin(ctx, username, password)
}

// ResetPassword sets a new password for username and revokes their SQL
// sessions.
func (s *Service) ResetPassword(ctx context.Context, username, password string) error {
	if _, err := validateCredentials(username, password); err != nil {
		return err
	}
	user, err := s.db.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if err := s.db.SetPassword(ctx, user.ID, password); err != nil {
		return err
	}
	logging.Info("Password reset for %q", user.Username)
	return nil
}

// SafeRedirect returns next if it is a path on this site, otherwise "/".
func SafeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
