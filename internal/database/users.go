package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storyhub/internal/logging"
)

const userColumns = "id, username, password_hash, role, display_author_ui, created_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.DisplayAuthorUI, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

// CreateUser inserts a user with a bcrypt-hashed password. Users with the
// author role get an author profile (pen name = username) in the same
// transaction. ErrConflict is returned when the username or pen name is taken.
func (d *Database) CreateUser(ctx context.Context, username, password string, role Role) (*User, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_user", start, err) }()

	if !role.Valid() {
		err = fmt.Errorf("invalid role %q", role)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var user *User
	err = d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)",
			username, string(hash), role,
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}

		if role == RoleAuthor {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO authors (pen_name, user_id) VALUES (?, ?)", username, id,
			); err != nil {
				return err
			}
		}

		user, err = scanUser(tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrConflict
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser returns the user with the given id.
func (d *Database) GetUser(ctx context.Context, id int64) (*User, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_user", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	user, err := scanUser(d.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return user, nil
}

// GetUserByUsername returns the user with the given username.
func (d *Database) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_user_by_username", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	user, err := scanUser(d.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return user, nil
}

// ValidateCredentials checks a username/password pair. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (d *Database) ValidateCredentials(ctx context.Context, username, password string) (*User, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("validate_credentials", start, err) }()

	user, err := d.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		err = ErrInvalidCredentials
		return nil, err
	}
	return user, nil
}

// SetPassword replaces a user's password and drops their SQL-backed sessions.
func (d *Database) SetPassword(ctx context.Context, userID int64, password string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_password", start, err) }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", string(hash), userID)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrNotFound
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ?", userID)
		return err
	})
	return err
}

// SetDisplayAuthorUI stores the per-user author UI preference.
func (d *Database) SetDisplayAuthorUI(ctx context.Context, userID int64, enabled bool) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_display_author_ui", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "UPDATE users SET display_author_ui = ? WHERE id = ?", enabled, userID)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// CountUsers returns the number of registered users.
func (d *Database) CountUsers(ctx context.Context) (int, error) {
	return d.count(ctx, "count_users", "SELECT COUNT(*) FROM users")
}

// EnsureAdmin creates the admin account if no user with that username
// exists. It reports whether a user was created.
func (d *Database) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := d.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	if _, err := d.CreateUser(ctx, username, password, RoleAdmin); err != nil {
		// Another process seeded it first.
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	logging.Info("Seeded default admin account %q", username)
	return true, nil
}
