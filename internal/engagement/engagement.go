// Package engagement records reader activity: favorite books and album
// visits.
package engagement

import (
	"context"
	"time"

	"storyhub/internal/authz"
	"storyhub/internal/database"
	"storyhub/internal/logging"
	"storyhub/internal/metrics"
)

// Clock abstracts time retrieval so visit timestamps are deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Tracker writes favorites and visit logs.
type Tracker struct {
	db    *database.Database
	clock Clock
}

// NewTracker creates a Tracker. A nil clock uses the wall clock.
func NewTracker(db *database.Database, clock Clock) *Tracker {
	if clock == nil {
		clock = RealClock{}
	}
	return &Tracker{db: db, clock: clock}
}

// ToggleFavorite flips whether actor has favorited book and returns the new
// state. Concurrent toggles of the same pair are serialized by the store.
func (t *Tracker) ToggleFavorite(ctx context.Context, actor *authz.Actor, book *database.Book) (bool, error) {
	favorited, err := t.db.ToggleFavorite(ctx, actor.ID, book.ID)
	if err != nil {
		return false, err
	}

	result := "unfavorited"
	if favorited {
		result = "favorited"
	}
	metrics.FavoriteTogglesTotal.WithLabelValues(result).Inc()
	logging.Debug("User %d %s book %d", actor.ID, result, book.ID)
	return favorited, nil
}

// IsFavorite reports whether actor has favorited book. Anonymous actors
// have no favorites.
func (t *Tracker) IsFavorite(ctx context.Context, actor *authz.Actor, book *database.Book) (bool, error) {
	if actor == nil {
		return false, nil
	}
	return t.db.IsFavorite(ctx, actor.ID, book.ID)
}

// Favorites lists the books actor has favorited.
func (t *Tracker) Favorites(ctx context.Context, actor *authz.Actor) ([]database.Book, error) {
	return t.db.ListFavoriteBooks(ctx, actor.ID)
}

// RecordVisit logs one view of album. actor may be nil for anonymous
// viewers.
func (t *Tracker) RecordVisit(ctx context.Context, album *database.Album, actor *authz.Actor) (*database.VisitLog, error) {
	var userID *int64
	if actor != nil {
		id := actor.ID
		userID = &id
	}

	visit, err := t.db.RecordVisit(ctx, album.ID, userID, t.clock.Now())
	if err != nil {
		return nil, err
	}
	metrics.VisitsRecordedTotal.Inc()
	return visit, nil
}
