package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const bookSelect = `
	SELECT b.id, b.title, b.description, b.author_id, a.pen_name, a.user_id
	FROM books b
	JOIN authors a ON a.id = b.author_id`

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	var b Book
	var author Author
	var userID sql.NullInt64
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &b.AuthorID, &author.PenName, &userID); err != nil {
		return nil, err
	}
	author.ID = b.AuthorID
	author.UserID = idPtr(userID)
	b.Author = &author
	return &b, nil
}

func (d *Database) queryBooks(ctx context.Context, operation, query string, args ...any) ([]Book, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(operation, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, scanErr := scanBook(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		books = append(books, *b)
	}
	err = rows.Err()
	return books, err
}

// CreateBook inserts a book for the given author.
func (d *Database) CreateBook(ctx context.Context, author *Author, title, description string) (*Book, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_book", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO books (title, description, author_id) VALUES (?, ?, ?)",
		title, description, author.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Book{ID: id, Title: title, Description: description, AuthorID: author.ID, Author: author}, nil
}

// GetBook returns a book with its author.
func (d *Database) GetBook(ctx context.Context, id int64) (*Book, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_book", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	book, err := scanBook(d.db.QueryRowContext(ctx, bookSelect+" WHERE b.id = ?", id))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return book, nil
}

// ListBooks returns all books, newest first.
func (d *Database) ListBooks(ctx context.Context) ([]Book, error) {
	return d.queryBooks(ctx, "list_books", bookSelect+" ORDER BY b.id DESC")
}

// ListBooksByAuthor returns an author's books, newest first.
func (d *Database) ListBooksByAuthor(ctx context.Context, authorID int64) ([]Book, error) {
	return d.queryBooks(ctx, "list_books_by_author", bookSelect+" WHERE b.author_id = ? ORDER BY b.id DESC", authorID)
}

// SearchBooks returns books whose title or author pen name contains query,
// ignoring case. Each book appears once. An empty query matches nothing.
func (d *Database) SearchBooks(ctx context.Context, query string) ([]Book, error) {
	query = strings.ToLower(query)
	if query == "" {
		return []Book{}, nil
	}
	// instr avoids LIKE wildcard handling for user-supplied % and _.
	return d.queryBooks(ctx, "search_books",
		bookSelect+" WHERE instr(lower(b.title), ?) > 0 OR instr(lower(a.pen_name), ?) > 0 ORDER BY b.id DESC",
		query, query,
	)
}

// CountBooks returns the total number of books.
func (d *Database) CountBooks(ctx context.Context) (int, error) {
	return d.count(ctx, "count_books", "SELECT COUNT(*) FROM books")
}
