package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storyhub/internal/content"
	"storyhub/internal/logging"
	"storyhub/internal/reporting"
)

const exportPath = "/admin/export"

// AdminDashboard shows site-wide totals.
func (h *Handlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reporter.AdminSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err, "/")
		return
	}
	h.render(w, r, summary)
}

// ExportPreview is the JSON form of a visit export.
type ExportPreview struct {
	AlbumID     int64  `json:"albumId"`
	AlbumTitle  string `json:"albumTitle"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	TotalVisits int    `json:"totalVisits"`
	UniqueUsers int    `json:"uniqueUsers"`
	CSV         string `json:"csv"`
}

func newExportPreview(e *reporting.Export) ExportPreview {
	return ExportPreview{
		AlbumID:     e.AlbumID,
		AlbumTitle:  e.AlbumTitle,
		StartDate:   e.StartDate(),
		EndDate:     e.EndDate(),
		TotalVisits: e.TotalVisits,
		UniqueUsers: e.UniqueUsers,
		CSV:         e.CSV(),
	}
}

// AdminExportPage lists albums that can be exported.
func (h *Handlers) AdminExportPage(w http.ResponseWriter, r *http.Request) {
	albums, err := h.db.ListAlbums(r.Context())
	if err != nil {
		h.handleError(w, r, err, "/admin")
		return
	}
	h.render(w, r, map[string]interface{}{"albums": albums})
}

// AdminExport computes visit totals for one album over an optional date
// range. The result is a CSV attachment, or a JSON preview when preview=1.
func (h *Handlers) AdminExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	albumID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("album_id")), 10, 64)
	if err != nil || albumID <= 0 {
		h.handleError(w, r, &content.ValidationError{Field: "album_id", Message: "Choose an album to export."}, exportPath)
		return
	}

	export, err := h.reporter.ExportVisits(ctx, albumID, r.FormValue("start_date"), r.FormValue("end_date"))
	if err != nil {
		h.handleError(w, r, err, exportPath)
		return
	}

	logging.Info("Exported visits for album %d (%s to %s)", export.AlbumID, export.StartDate(), export.EndDate())

	if r.FormValue("preview") == "1" {
		albums, err := h.db.ListAlbums(ctx)
		if err != nil {
			h.handleError(w, r, err, exportPath)
			return
		}
		h.renderStatus(w, r, http.StatusOK,
			map[string]interface{}{"albums": albums, "export": newExportPreview(export)},
			Flash{Category: flashSuccess, Message: "Export generated."})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="album-%d-visits.csv"`, export.AlbumID))
	w.Header().Set("Cache-Control", "no-store")
	if err := export.WriteCSV(w); err != nil {
		logging.Error("failed to write export for album %d: %v", export.AlbumID, err)
	}
}
