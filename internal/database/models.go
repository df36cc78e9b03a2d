package database

import "time"

// Role is the access level stored on a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleReader Role = "reader"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleReader:
		return true
	}
	return false
}

type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	DisplayAuthorUI bool      `json:"displayAuthorUi"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Author is a pen-name profile. UserID is nil for detached profiles.
type Author struct {
	ID      int64  `json:"id"`
	PenName string `json:"penName"`
	UserID  *int64 `json:"userId,omitempty"`
}

// Book is always returned with its Author populated.
type Book struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AuthorID    int64   `json:"authorId"`
	Author      *Author `json:"author,omitempty"`
}

// Chapter lookups by id populate Book (and Book.Author) so ownership can be
// derived without another query.
type Chapter struct {
	ID         int64  `json:"id"`
	BookID     int64  `json:"bookId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `json:"orderIndex"`
	Book       *Book  `json:"-"`
}

type Album struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AuthorID    int64   `json:"authorId"`
	Author      *Author `json:"author,omitempty"`
}

// Note hangs off at most one of Book or Album. GetNote populates whichever
// parent is set, including the parent's author id.
type Note struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	BookID    *int64    `json:"bookId,omitempty"`
	AlbumID   *int64    `json:"albumId,omitempty"`
	Book      *Book     `json:"-"`
	Album     *Album    `json:"-"`
}

type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	BookID    int64     `json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
}

type VisitLog struct {
	ID        int64     `json:"id"`
	AlbumID   int64     `json:"albumId"`
	UserID    *int64    `json:"userId,omitempty"`
	VisitedAt time.Time `json:"visitedAt"`
}

// Session is a server-side login. Token is only populated on creation; the
// stored value is a hash.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// VisitStats is the aggregate over a visit-log range.
type VisitStats struct {
	Total       int
	UniqueUsers int
}
