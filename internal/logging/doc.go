// Package logging provides a small leveled logger for storyhub.
//
// Levels, lowest first:
//   - DEBUG: verbose diagnostics
//   - INFO: lifecycle and request-level events
//   - WARN: recoverable problems such as denied access or bad config values
//   - ERROR: failed storage operations
//
// The level comes from LOG_LEVEL (or DEBUG=true) and can be overridden with
// SetLevel.
package logging
