package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const albumSelect = `
	SELECT al.id, al.title, al.description, al.author_id, a.pen_name, a.user_id
	FROM albums al
	JOIN authors a ON a.id = al.author_id`

func scanAlbum(row interface{ Scan(...any) error }) (*Album, error) {
	var al Album
	var author Author
	var userID sql.NullInt64
	if err := row.Scan(&al.ID, &al.Title, &al.Description, &al.AuthorID, &author.PenName, &userID); err != nil {
		return nil, err
	}
	author.ID = al.AuthorID
	author.UserID = idPtr(userID)
	al.Author = &author
	return &al, nil
}

func (d *Database) queryAlbums(ctx context.Context, operation, query string, args ...any) ([]Album, error) {
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

	albums := []Album{}
	for rows.Next() {
		al, scanErr := scanAlbum(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		albums = append(albums, *al)
	}
	err = rows.Err()
	return albums, err
}

// CreateAlbum inserts an album for the given author.
func (d *Database) CreateAlbum(ctx context.Context, author *Author, title, description string) (*Album, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_album", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO albums (title, description, author_id) VALUES (?, ?, ?)",
		title, description, author.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create album: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Album{ID: id, Title: title, Description: description, AuthorID: author.ID, Author: author}, nil
}

// GetAlbum returns an album with its author.
func (d *Database) GetAlbum(ctx context.Context, id int64) (*Album, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_album", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	album, err := scanAlbum(d.db.QueryRowContext(ctx, albumSelect+" WHERE al.id = ?", id))
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return album, nil
}

// ListAlbums returns every album ordered by title.
func (d *Database) ListAlbums(ctx context.Context) ([]Album, error) {
	return d.queryAlbums(ctx, "list_albums", albumSelect+" ORDER BY al.title, al.id")
}

// ListAlbumsByAuthor returns an author's albums ordered by title.
func (d *Database) ListAlbumsByAuthor(ctx context.Context, authorID int64) ([]Album, error) {
	return d.queryAlbums(ctx, "list_albums_by_author", albumSelect+" WHERE al.author_id = ? ORDER BY al.title, al.id", authorID)
}

// CountAlbums returns the total number of albums.
func (d *Database) CountAlbums(ctx context.Context) (int, error) {
	return d.count(ctx, "count_albums", "SELECT COUNT(*) FROM albums")
}

// AlbumVisitCounts returns the visit count of each of an author's albums,
// keyed by album id. Albums without visits map to zero.
func (d *Database) AlbumVisitCounts(ctx context.Context, authorID int64) (map[int64]int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("album_visit_counts", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT al.id, COUNT(v.id)
		FROM albums al
		LEFT JOIN visit_logs v ON v.album_id = al.id
		WHERE al.author_id = ?
		GROUP BY al.id`, authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count album visits: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err = rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	err = rows.Err()
	return counts, err
}
