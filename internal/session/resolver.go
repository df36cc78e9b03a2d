package session

import (
	"context"
	"errors"

	"storyhub/internal/authz"
	"storyhub/internal/database"
)

// UserSource loads users by id.
type UserSource interface {
	GetUser(ctx context.Context, id int64) (*database.User, error)
}

// Resolver maps session tokens to actors.
type Resolver struct {
	store Store
	users UserSource
}

// NewResolver returns a Resolver reading sessions from store and users from
// users.
func NewResolver(store Store, users UserSource) *Resolver {
	return &Resolver{store: store, users: users}
}

// Store returns the underlying session store.
func (r *Resolver) Store() Store {
	return r.store
}

// CurrentActor returns the actor for token, or nil when the token is empty,
// unknown, expired, or belongs to a user that no longer exists. Only backend
// failures are returned as errors.
func (r *Resolver) CurrentActor(ctx context.Context, token string) (*authz.Actor, error) {
	if token == "" {
		return nil, nil
	}

	userID, ok, err := r.store.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	user, err := r.users.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return authz.NewActor(user), nil
}
