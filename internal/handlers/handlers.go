package handlers

import (
	"time"

	"storyhub/internal/accounts"
	"storyhub/internal/content"
	"storyhub/internal/database"
	"storyhub/internal/engagement"
	"storyhub/internal/reporting"
	"storyhub/internal/session"
)

type Handlers struct {
	db         *database.Database
	content    *content.Service
	accounts   *accounts.Service
	tracker    *engagement.Tracker
	reporter   *reporting.Reporter
	resolver   *session.Resolver
	sessionTTL time.Duration
}

func New(db *database.Database, sessions session.Store, sessionTTL time.Duration) *Handlers {
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &Handlers{
		db:         db,
		content:    content.NewService(db),
		accounts:   accounts.NewService(db, sessions),
		tracker:    engagement.NewTracker(db, nil),
		reporter:   reporting.NewReporter(db),
		resolver:   session.NewResolver(sessions, db),
		sessionTTL: sessionTTL,
	}
}

// Accounts exposes the account service for startup seeding.
func (h *Handlers) Accounts() *accounts.Service {
	return h.accounts
}

// Reporter exposes the reporter for the metrics collector.
func (h *Handlers) Reporter() *reporting.Reporter {
	return h.reporter
}
