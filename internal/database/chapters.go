package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateChapter appends a chapter to a book. The order index is one past the
// book's current maximum, computed in the same statement.
func (d *Database) CreateChapter(ctx context.Context, book *Book, title, content string) (*Chapter, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_chapter", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ch := &Chapter{BookID: book.ID, Title: title, Content: content, Book: book}
	err = d.db.QueryRowContext(ctx, `
		INSERT INTO chapters (title, content, book_id, order_index)
		SELECT ?, ?, ?, COALESCE(MAX(order_index), 0) + 1 FROM chapters WHERE book_id = ?
		RETURNING id, order_index`,
		title, content, book.ID, book.ID,
	).Scan(&ch.ID, &ch.OrderIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}
	return ch, nil
}

// GetChapter returns a chapter with its book and the book's author.
func (d *Database) GetChapter(ctx context.Context, id int64) (*Chapter, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_chapter", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ch Chapter
	var b Book
	var author Author
	var userID sql.NullInt64
	err = d.db.QueryRowContext(ctx, `
		SELECT c.id, c.title, c.content, c.order_index, c.book_id,
		       b.title, b.description, b.author_id, a.pen_name, a.user_id
		FROM chapters c
		JOIN books b ON b.id = c.book_id
		JOIN authors a ON a.id = b.author_id
		WHERE c.id = ?`, id,
	).Scan(&ch.ID, &ch.Title, &ch.Content, &ch.OrderIndex, &ch.BookID,
		&b.Title, &b.Description, &b.AuthorID, &author.PenName, &userID)
	if err != nil {
		err = notFound(err)
		return nil, err
	}

	b.ID = ch.BookID
	author.ID = b.AuthorID
	author.UserID = idPtr(userID)
	b.Author = &author
	ch.Book = &b
	return &ch, nil
}

// ListChapters returns a book's chapters in ascending order_index.
func (d *Database) ListChapters(ctx context.Context, bookID int64) ([]Chapter, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_chapters", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, title, content, order_index, book_id FROM chapters WHERE book_id = ? ORDER BY order_index, id",
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []Chapter{}
	for rows.Next() {
		var ch Chapter
		if err = rows.Scan(&ch.ID, &ch.Title, &ch.Content, &ch.OrderIndex, &ch.BookID); err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	err = rows.Err()
	return chapters, err
}

// DeleteChapter removes a chapter. Remaining chapters keep their indexes.
func (d *Database) DeleteChapter(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_chapter", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM chapters WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}
