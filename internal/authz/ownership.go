package authz

import "storyhub/internal/database"

// OwnsBook reports whether the book's author profile is linked to actor.
// The book must have its Author loaded.
func OwnsBook(actor *Actor, book *database.Book) bool {
	if actor == nil || book == nil || book.Author == nil || book.Author.UserID == nil {
		return false
	}
	return *book.Author.UserID == actor.ID
}

// OwnsChapter reports whether actor owns the chapter's book.
func OwnsChapter(actor *Actor, chapter *database.Chapter) bool {
	return chapter != nil && OwnsBook(actor, chapter.Book)
}

// CanCreateChapter checks that actor may add a chapter to book.
func CanCreateChapter(actor *Actor, book *database.Book) error {
	if !OwnsBook(actor, book) {
		return &Denial{
			Reason:   NotOwner,
			Message:  "You are not the author of this book.",
			Redirect: dashboardPath,
		}
	}
	return nil
}

// CanDeleteChapter checks that actor may delete chapter.
func CanDeleteChapter(actor *Actor, chapter *database.Chapter) error {
	if !OwnsChapter(actor, chapter) {
		return &Denial{
			Reason:   NotOwner,
			Message:  "You are not the author of this chapter's book.",
			Redirect: homePath,
		}
	}
	return nil
}

// CanDeleteNote checks that the note's parent, if any, belongs to author.
// author is the actor's profile and may be nil, in which case only notes
// without a parent can be deleted.
func CanDeleteNote(author *database.Author, note *database.Note) error {
	owned := func(parentAuthorID int64) bool {
		return author != nil && author.ID == parentAuthorID
	}
	if (note.Book != nil && !owned(note.Book.AuthorID)) ||
		(note.Album != nil && !owned(note.Album.AuthorID)) {
		return &Denial{
			Reason:   NotOwner,
			Message:  "You may only delete notes on your own books and albums.",
			Redirect: dashboardPath,
		}
	}
	return nil
}

// NoteParents returns the parent ids a new note may be attached to.
// References to a missing or foreign book or album are dropped. A note has
// at most one parent, so when both are owned the book is kept.
func NoteParents(author *database.Author, book *database.Book, album *database.Album) (bookID, albumID *int64) {
	if author == nil {
		return nil, nil
	}
	if book != nil && book.AuthorID == author.ID {
		id := book.ID
		return &id, nil
	}
	if album != nil && album.AuthorID == author.ID {
		id := album.ID
		return nil, &id
	}
	return nil, nil
}
