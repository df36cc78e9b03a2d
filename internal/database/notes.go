package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Parents are joined so callers can check ownership from the note alone.
const noteSelect = `
	SELECT n.id, n.content, n.created_at, n.book_id, n.album_id,
	       b.title, b.author_id, al.title, al.author_id
	FROM notes n
	LEFT JOIN books b ON b.id = n.book_id
	LEFT JOIN albums al ON al.id = n.album_id`

func scanNote(row interface{ Scan(...any) error }) (*Note, error) {
	var n Note
	var createdAt int64
	var bookID, albumID, bookAuthor, albumAuthor sql.NullInt64
	var bookTitle, albumTitle sql.NullString
	if err := row.Scan(&n.ID, &n.Content, &createdAt, &bookID, &albumID,
		&bookTitle, &bookAuthor, &albumTitle, &albumAuthor); err != nil {
		return nil, err
	}
	n.CreatedAt = time.Unix(createdAt, 0)
	n.BookID = idPtr(bookID)
	n.AlbumID = idPtr(albumID)
	if n.BookID != nil {
		n.Book = &Book{ID: *n.BookID, Title: bookTitle.String, AuthorID: bookAuthor.Int64}
	}
	if n.AlbumID != nil {
		n.Album = &Album{ID: *n.AlbumID, Title: albumTitle.String, AuthorID: albumAuthor.Int64}
	}
	return &n, nil
}

func (d *Database) queryNotes(ctx context.Context, operation, query string, args ...any) ([]Note, error) {
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

	notes := []Note{}
	for rows.Next() {
		n, scanErr := scanNote(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		notes = append(notes, *n)
	}
	err = rows.Err()
	return notes, err
}

// CreateNote inserts a note attached to at most one of bookID and albumID.
// Supplying both violates the notes CHECK constraint.
func (d *Database) CreateNote(ctx context.Context, content string, bookID, albumID *int64) (*Note, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_note", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	result, err := d.db.ExecContext(ctx,
		"INSERT INTO notes (content, created_at, book_id, album_id) VALUES (?, ?, ?, ?)",
		content, now.Unix(), nullableID(bookID), nullableID(albumID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Note{ID: id, Content: content, CreatedAt: time.Unix(now.Unix(), 0), BookID: bookID, AlbumID: albumID}, nil
}

// GetNote returns a note with its parent's id, title and author id.
func (d *Database) GetNote(ctx context.Context, id int64) (*Note, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_note", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	note, err := scanNote(d.db.QueryRowContext(ctx, noteSelect+" WHERE n.id = ?", id))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return note, nil
}

// ListNotesByBook returns a book's notes, newest first.
func (d *Database) ListNotesByBook(ctx context.Context, bookID int64) ([]Note, error) {
	return d.queryNotes(ctx, "list_notes_by_book", noteSelect+" WHERE n.book_id = ? ORDER BY n.created_at DESC, n.id DESC", bookID)
}

// ListNotesByAlbum returns an album's notes, newest first.
func (d *Database) ListNotesByAlbum(ctx context.Context, albumID int64) ([]Note, error) {
	return d.queryNotes(ctx, "list_notes_by_album", noteSelect+" WHERE n.album_id = ? ORDER BY n.created_at DESC, n.id DESC", albumID)
}

// ListNotesByAuthor returns notes attached to any of an author's books or
// albums, newest first.
func (d *Database) ListNotesByAuthor(ctx context.Context, authorID int64) ([]Note, error) {
	return d.queryNotes(ctx, "list_notes_by_author",
		noteSelect+" WHERE b.author_id = ? OR al.author_id = ? ORDER BY n.created_at DESC, n.id DESC",
		authorID, authorID,
	)
}

// DeleteNote removes a note.
func (d *Database) DeleteNote(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_note", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}
