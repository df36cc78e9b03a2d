package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ToggleFavorite flips the favorite state of (userID, bookID) and returns
// the new state. The transaction takes the write lock up front, and the
// insert ignores a conflicting row, so two concurrent toggles can never both
// insert.
func (d *Database) ToggleFavorite(ctx context.Context, userID, bookID int64) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("toggle_favorite", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var favorited bool
	err = d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM favorites WHERE user_id = ? AND book_id = ?", userID, bookID)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows > 0 {
			favorited = false
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO favorites (user_id, book_id) VALUES (?, ?)
			ON CONFLICT (user_id, book_id) DO NOTHING`, userID, bookID)
		if err != nil {
			return err
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return favorited, nil
}

// IsFavorite checks if a book is in the user's favorites.
func (d *Database) IsFavorite(ctx context.Context, userID, bookID int64) (bool, error) {
	n, err := d.count(ctx, "is_favorite",
		"SELECT COUNT(*) FROM favorites WHERE user_id = ? AND book_id = ?", userID, bookID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFavoriteBooks returns the user's favorite books, most recently
// favorited first.
func (d *Database) ListFavoriteBooks(ctx context.Context, userID int64) ([]Book, error) {
	return d.queryBooks(ctx, "list_favorite_books", `
		SELECT b.id, b.title, b.description, b.author_id, a.pen_name, a.user_id
		FROM favorites f
		JOIN books b ON b.id = f.book_id
		JOIN authors a ON a.id = b.author_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC, f.id DESC`, userID)
}
