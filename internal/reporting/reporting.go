// Package reporting answers the admin dashboard's read-only questions:
// site-wide totals and per-album visit exports.
package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"storyhub/internal/content"
	"storyhub/internal/database"
	"storyhub/internal/metrics"
)

// DateLayout is the format of export date bounds, both in and out.
const DateLayout = "2006-01-02"

var (
	// MinDate and MaxDate bound an export when a date is omitted.
	MinDate = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// ExportHeader is the column row of a visit export.
var ExportHeader = []string{"album_id", "album_title", "start_date", "end_date", "total_visits", "unique_users"}

// Summary holds the admin dashboard totals.
type Summary struct {
	Users  int `json:"users"`
	Books  int `json:"books"`
	Albums int `json:"albums"`
	Visits int `json:"visits"`
}

// Export is the visit report for one album over a date range.
type Export struct {
	AlbumID     int64     `json:"albumId"`
	AlbumTitle  string    `json:"albumTitle"`
	Start       time.Time `json:"-"`
	End         time.Time `json:"-"`
	TotalVisits int       `json:"totalVisits"`
	UniqueUsers int       `json:"uniqueUsers"`
}

// StartDate returns the lower bound as YYYY-MM-DD.
func (e *Export) StartDate() string { return e.Start.Format(DateLayout) }

// EndDate returns the upper bound as YYYY-MM-DD.
func (e *Export) EndDate() string { return e.End.Format(DateLayout) }

// Record returns the export's single data row.
func (e *Export) Record() []string {
	return []string{
		strconv.FormatInt(e.AlbumID, 10),
		e.AlbumTitle,
		e.StartDate(),
		e.EndDate(),
		strconv.Itoa(e.TotalVisits),
		strconv.Itoa(e.UniqueUsers),
	}
}

// WriteCSV writes the header and the data row.
func (e *Export) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	if err := cw.Write(e.Record()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the export as CSV text.
func (e *Export) CSV() string {
	var sb strings.Builder
	// strings.Builder never fails to write.
	_ = e.WriteCSV(&sb)
	return sb.String()
}

// Reporter runs read-only aggregate queries.
type Reporter struct {
	db *database.Database
}

// NewReporter creates a Reporter over db.
func NewReporter(db *database.Database) *Reporter {
	return &Reporter{db: db}
}

// AdminSummary counts users, books, albums and visits. The counts run
// concurrently and are not taken from one snapshot.
func (r *Reporter) AdminSummary(ctx context.Context) (Summary, error) {
	var s Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		s.Users, err = r.db.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Books, err = r.db.CountBooks(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Albums, err = r.db.CountAlbums(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Visits, err = r.db.CountVisits(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("admin summary: %w", err)
	}
	return s, nil
}

// CollectStats publishes the summary to the metrics collector.
func (r *Reporter) CollectStats(ctx context.Context) (metrics.Stats, error) {
	r.db.UpdateDBMetrics()
	s, err := r.AdminSummary(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	return metrics.Stats{Users: s.Users, Books: s.Books, Albums: s.Albums, Visits: s.Visits}, nil
}

// ParseRange turns optional YYYY-MM-DD bounds into an inclusive time range.
// A missing start is MinDate and a missing end is MaxDate. The end date
// covers the whole day.
func ParseRange(start, end string) (from, to time.Time, err error) {
	from, to = MinDate, MaxDate

	if start = strings.TrimSpace(start); start != "" {
		if from, err = time.Parse(DateLayout, start); err != nil {
			return time.Time{}, time.Time{}, &content.ValidationError{Field: "start_date", Message: "Start date must be YYYY-MM-DD."}
		}
	}
	if end = strings.TrimSpace(end); end != "" {
		day, err := time.Parse(DateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, &content.ValidationError{Field: "end_date", Message: "End date must be YYYY-MM-DD."}
		}
		to = day.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

// ExportVisits reports total and distinct-user visits to an album between
// the given dates, inclusive. An unknown album is database.ErrNotFound even
// when the dates are also malformed. A start after the end yields zero counts.
func (r *Reporter) ExportVisits(ctx context.Context, albumID int64, start, end string) (*Export, error) {
	album, err := r.db.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	from, to, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}

	stats, err := r.db.VisitStats(ctx, album.ID, from, to)
	if err != nil {
		return nil, err
	}

	return &Export{
		AlbumID:     album.ID,
		AlbumTitle:  album.Title,
		Start:       from,
		End:         to,
		TotalVisits: stats.Total,
		UniqueUsers: stats.UniqueUsers,
	}, nil
}
