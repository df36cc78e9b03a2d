package handlers

import (
	"net/http"

	"storyhub/internal/logging"
	"storyhub/internal/startup"
)

// VersionResponse is the build information plus the applied schema version.
type VersionResponse struct {
	startup.BuildInfo
	SchemaVersion uint `json:"schemaVersion"`
}

// GetVersion reports what is deployed. A schema version of 0 means it
// could not be read.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	resp := VersionResponse{BuildInfo: startup.GetBuildInfo()}
	if v, err := h.db.SchemaVersion(); err != nil {
		logging.Warn("Could not read schema version: %v", err)
	} else {
		resp.SchemaVersion = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, resp)
}
