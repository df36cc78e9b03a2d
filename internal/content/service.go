package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storyhub/internal/authz"
	"storyhub/internal/database"
	"storyhub/internal/logging"
)

// Service wraps the content repository.
type Service struct {
	db *database.Database
}

// NewService creates a content service over db.
func NewService(db *database.Database) *Service {
	return &Service{db: db}
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

// CreateBook adds a book to author's catalogue.
func (s *Service) CreateBook(ctx context.Context, author *database.Author, title, description string) (*database.Book, error) {
	title, err := required("title", title, "Book title cannot be empty.")
	if err != nil {
		return nil, err
	}
	book, err := s.db.CreateBook(ctx, author, title, trim(description))
	if err != nil {
		return nil, err
	}
	logging.Info("Author %d created book %d %q", author.ID, book.ID, book.Title)
	return book, nil
}

// CreateAlbum adds an album to author's catalogue.
func (s *Service) CreateAlbum(ctx context.Context, author *database.Author, title, description string) (*database.Album, error) {
	title, err := required("title", title, "Album title cannot be empty.")
	if err != nil {
		return nil, err
	}
	album, err := s.db.CreateAlbum(ctx, author, title, trim(description))
	if err != nil {
		return nil, err
	}
	logging.Info("Author %d created album %d %q", author.ID, album.ID, album.Title)
	return album, nil
}

// CreateChapter appends a chapter to book.
func (s *Service) CreateChapter(ctx context.Context, book *database.Book, title, body string) (*database.Chapter, error) {
	title, err := required("title", title, "Chapter title cannot be empty.")
	if err != nil {
		return nil, err
	}
	chapter, err := s.db.CreateChapter(ctx, book, title, trim(body))
	if err != nil {
		return nil, err
	}
	logging.Debug("Book %d gained chapter %d at index %d", book.ID, chapter.ID, chapter.OrderIndex)
	return chapter, nil
}

// DeleteChapter removes chapter. The remaining chapters keep their indexes.
func (s *Service) DeleteChapter(ctx context.Context, chapter *database.Chapter) error {
	return s.db.DeleteChapter(ctx, chapter.ID)
}

// ListChapters returns a book's chapters in reading order.
func (s *Service) ListChapters(ctx context.Context, bookID int64) ([]database.Chapter, error) {
	return s.db.ListChapters(ctx, bookID)
}

// Neighbors returns the chapters before and after chapter in its book, or
// nil at either end.
func (s *Service) Neighbors(ctx context.Context, chapter *database.Chapter) (prev, next *database.Chapter, err error) {
	chapters, err := s.db.ListChapters(ctx, chapter.BookID)
	if err != nil {
		return nil, nil, err
	}
	prev, next = Neighbors(chapters, chapter.ID)
	return prev, next, nil
}

// Neighbors finds the entries adjacent to id in an ordered chapter list.
func Neighbors(chapters []database.Chapter, id int64) (prev, next *database.Chapter) {
	for i := range chapters {
		if chapters[i].ID != id {
			continue
		}
		if i > 0 {
			prev = &chapters[i-1]
		}
		if i < len(chapters)-1 {
			next = &chapters[i+1]
		}
		return prev, next
	}
	return nil, nil
}

// CreateNote stores a note for author. bookID and albumID are optional form
// references; any that is missing or not owned by author is dropped and the
// note is still created.
func (s *Service) CreateNote(ctx context.Context, author *database.Author, body string, bookID, albumID *int64) (*database.Note, error) {
	if author == nil {
		return nil, errors.New("create note: author profile required")
	}
	body, err := required("content", body, "Note content cannot be empty.")
	if err != nil {
		return nil, err
	}

	var book *database.Book
	if bookID != nil {
		if book, err = s.optionalBook(ctx, *bookID); err != nil {
			return nil, err
		}
	}
	var album *database.Album
	if albumID != nil {
		if album, err = s.optionalAlbum(ctx, *albumID); err != nil {
			return nil, err
		}
	}

	ownBook, ownAlbum := authz.NoteParents(author, book, album)
	if (bookID != nil && ownBook == nil) || (albumID != nil && ownAlbum == nil) {
		logging.Debug("Dropped note parent reference (book=%v album=%v) for author %d", bookID, albumID, author.ID)
	}
	return s.db.CreateNote(ctx, body, ownBook, ownAlbum)
}

func (s *Service) optionalBook(ctx context.Context, id int64) (*database.Book, error) {
	book, err := s.db.GetBook(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return book, err
}

func (s *Service) optionalAlbum(ctx context.Context, id int64) (*database.Album, error) {
	album, err := s.db.GetAlbum(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return album, err
}

// DeleteNote removes note.
func (s *Service) DeleteNote(ctx context.Context, note *database.Note) error {
	return s.db.DeleteNote(ctx, note.ID)
}

// Search returns books whose title or author pen name contains query,
// ignoring case. A blank query returns no results.
func (s *Service) Search(ctx context.Context, query string) ([]database.Book, error) {
	query = trim(query)
	if query == "" {
		return []database.Book{}, nil
	}
	books, err := s.db.SearchBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return books, nil
}
