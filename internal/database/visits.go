package database

import (
	"context"
	"fmt"
	"time"
)

// RecordVisit appends a visit to an album. userID is nil for anonymous
// viewers.
func (d *Database) RecordVisit(ctx context.Context, albumID int64, userID *int64, at time.Time) (*VisitLog, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("record_visit", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO visit_logs (album_id, user_id, visited_at) VALUES (?, ?, ?)",
		albumID, nullableID(userID), at.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &VisitLog{ID: id, AlbumID: albumID, UserID: userID, VisitedAt: time.Unix(at.Unix(), 0)}, nil
}

// CountVisits returns the total number of recorded visits.
func (d *Database) CountVisits(ctx context.Context) (int, error) {
	return d.count(ctx, "count_visits", "SELECT COUNT(*) FROM visit_logs")
}

// VisitStats aggregates an album's visits with from <= visited_at <= to.
// Anonymous visits count towards Total but not UniqueUsers.
func (d *Database) VisitStats(ctx context.Context, albumID int64, from, to time.Time) (VisitStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("export_visits", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats VisitStats
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_id)
		FROM visit_logs
		WHERE album_id = ? AND visited_at >= ? AND visited_at <= ?`,
		albumID, from.Unix(), to.Unix(),
	).Scan(&stats.Total, &stats.UniqueUsers)
	if err != nil {
		return VisitStats{}, fmt.Errorf("failed to aggregate visits: %w", err)
	}
	return stats, nil
}
