package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func scanAuthor(row interface{ Scan(...any) error }) (*Author, error) {
	var a Author
	var userID sql.NullInt64
	if err := row.Scan(&a.ID, &a.PenName, &userID); err != nil {
		return nil, err
	}
	a.UserID = idPtr(userID)
	return &a, nil
}

// CreateAuthor inserts an author profile, optionally linked to a user.
func (d *Database) CreateAuthor(ctx context.Context, penName string, userID *int64) (*Author, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_author", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO authors (pen_name, user_id) VALUES (?, ?)", penName, nullableID(userID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrConflict
			return nil, err
		}
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Author{ID: id, PenName: penName, UserID: userID}, nil
}

// GetAuthor returns the author with the given id.
func (d *Database) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_author", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	author, err := scanAuthor(d.db.QueryRowContext(ctx,
		"SELECT id, pen_name, user_id FROM authors WHERE id = ?", id))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return author, nil
}

// GetAuthorByUserID returns the profile owned by a user.
func (d *Database) GetAuthorByUserID(ctx context.Context, userID int64) (*Author, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_author_by_user", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	author, err := scanAuthor(d.db.QueryRowContext(ctx,
		"SELECT id, pen_name, user_id FROM authors WHERE user_id = ?", userID))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return author, nil
}

// GetAuthorByPenName returns the author with the given pen name.
func (d *Database) GetAuthorByPenName(ctx context.Context, penName string) (*Author, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_author_by_pen_name", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	author, err := scanAuthor(d.db.QueryRowContext(ctx,
		"SELECT id, pen_name, user_id FROM authors WHERE pen_name = ?", penName))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return author, nil
}

// EnsureAuthorForUser returns the user's author profile, creating one named
// after the username when it is missing.
func (d *Database) EnsureAuthorForUser(ctx context.Context, user *User) (author *Author, created bool, err error) {
	author, err = d.GetAuthorByUserID(ctx, user.ID)
	if err == nil {
		return author, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	author, err = d.CreateAuthor(ctx, user.Username, &user.ID)
	if errors.Is(err, ErrConflict) {
		// A concurrent request may have created it; anything else is a pen
		// name clash with another profile.
		if existing, lookupErr := d.GetAuthorByUserID(ctx, user.ID); lookupErr == nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	return author, true, nil
}

// ListAuthors returns every author ordered by pen name.
func (d *Database) ListAuthors(ctx context.Context) ([]Author, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_authors", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT id, pen_name, user_id FROM authors ORDER BY pen_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := []Author{}
	for rows.Next() {
		a, scanErr := scanAuthor(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		authors = append(authors, *a)
	}
	err = rows.Err()
	return authors, err
}

// DeleteAuthor removes an author. Books, albums and everything below them
// go with it through ON DELETE CASCADE.
func (d *Database) DeleteAuthor(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_author", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM authors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}
