package authz

import (
	"context"

	"storyhub/internal/database"
)

// Actor is the authenticated principal for one request.
type Actor struct {
	ID              int64         `json:"id"`
	Username        string        `json:"username"`
	Role            database.Role `json:"role"`
	DisplayAuthorUI bool          `json:"displayAuthorUi"`
}

// NewActor builds an Actor from a stored user.
func NewActor(u *database.User) *Actor {
	return &Actor{
		ID:              u.ID,
		Username:        u.Username,
		Role:            u.Role,
		DisplayAuthorUI: u.DisplayAuthorUI,
	}
}

// IsAdmin reports whether the actor has the admin role. Safe on nil.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == database.RoleAdmin
}

// IsAuthor reports whether the actor has the author role. Safe on nil.
func (a *Actor) IsAuthor() bool {
	return a != nil && a.Role == database.RoleAuthor
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying actor.
func NewContext(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// FromContext returns the actor stored by NewContext, or nil for an
// anonymous request.
func FromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(contextKey{}).(*Actor)
	return actor
}
