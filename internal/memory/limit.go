// Package memory sizes the Go heap limit to the container it runs in.
//
// Call [ConfigureFromEnv] early in main, before significant allocations.
// An explicit GOMEMLIMIT always wins. Otherwise MEMORY_LIMIT (container
// limit in bytes, usually from the Kubernetes Downward API) is scaled by
// MEMORY_RATIO and applied with debug.SetMemoryLimit.
package memory

import (
	"math"
	"runtime/debug"
	"strconv"

	"github.com/dustin/go-humanize"

	"storyhub/internal/logging"
)

// DefaultRatio is the share of the container limit given to the Go heap.
// SQLite page cache and goroutine stacks live in the rest.
const DefaultRatio = 0.85

// Sources reported in Limit.Source.
const (
	SourceNone        = "none"
	SourceGoMemLimit  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
)

// Limit describes what ConfigureFromEnv decided.
type Limit struct {
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Configured reports whether a heap limit is in effect.
func (l Limit) Configured() bool {
	return l.GoMemLimit > 0
}

// setMemoryLimit is swapped out in tests so they do not change the limit
// of the test binary.
var setMemoryLimit = debug.SetMemoryLimit

// ConfigureFromEnv reads GOMEMLIMIT, MEMORY_LIMIT and MEMORY_RATIO through
// getenv and applies the resulting heap limit.
func ConfigureFromEnv(getenv func(string) string) Limit {
	if v := getenv("GOMEMLIMIT"); v != "" {
		// The runtime already parsed it; -1 reads without changing.
		limit := Limit{Source: SourceGoMemLimit}
		if current := setMemoryLimit(-1); current > 0 && current < math.MaxInt64 {
			limit.GoMemLimit = current
		}
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		return limit
	}

	raw := getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving GOMEMLIMIT unset")
		return Limit{Source: SourceNone}
	}
	containerLimit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return Limit{Source: SourceNone}
	}

	ratio := parseRatio(getenv("MEMORY_RATIO"))
	goMemLimit := int64(float64(containerLimit) * ratio)
	setMemoryLimit(goMemLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		humanize.IBytes(uint64(goMemLimit)), ratio*100, humanize.IBytes(uint64(containerLimit)))

	return Limit{
		Source:         SourceMemoryLimit,
		ContainerLimit: containerLimit,
		GoMemLimit:     goMemLimit,
		Ratio:          ratio,
	}
}

func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultRatio
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", raw, DefaultRatio)
		return DefaultRatio
	}
	return ratio
}
