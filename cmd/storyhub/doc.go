// Package main provides the entry point for the Storyhub server.
//
// Storyhub is a multi-role publishing site. Readers browse books, chapters
// and albums, keep a favorites list and leave visit history behind. Authors
// manage their own books, chapters, albums and notes. Administrators review
// album engagement and export visit reports as CSV.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT if not already set
//  2. Configuration Loading: Reads .env, an optional TOML file and the environment
//  3. Database Initialization: Opens SQLite and applies pending migrations
//  4. Session Store: SQLite-backed by default, Redis when SESSION_STORE=redis
//  5. Admin Seeding: Creates the default administrator on first start
//  6. Metrics Collector: Refreshes content gauges every minute
//  7. HTTP Server Setup: Configures routes, middleware and starts the server
//  8. Graceful Shutdown: Handles SIGINT/SIGTERM and stops all components
//
// # Background Services
//
//   - Metrics Collector: Updates Prometheus gauges from content counts
//   - Session Cleanup: Removes expired sessions from SQLite (Redis expires keys itself)
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Reader pages: index, search, authors, books, chapters, albums, favorites
//     - Account endpoints: login, logout, registration, settings
//     - Author dashboard and content management
//     - Admin dashboard and visit export
//     - Health probes (/healthz, /livez, /readyz) and /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/healthz)
//
// Middleware is applied outermost first: request ID, access log,
// compression, then session resolution. Route metrics are recorded per mux
// route template.
//
// # Environment Variables
//
//   - CONFIG_FILE: Optional TOML configuration file
//   - DATABASE_DIR: Directory for the SQLite database (default: ./data)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - SESSION_STORE: sqlite or redis (default: sqlite)
//   - SESSION_TTL: Session lifetime (default: 168h)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_PREFIX: Redis session store settings
//   - ADMIN_USERNAME, ADMIN_PASSWORD: Seeded administrator credentials
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - LOG_HEALTH_CHECKS: Include health probes in the access log
//   - GOMEMLIMIT, MEMORY_LIMIT, MEMORY_RATIO: Go heap limit sizing
//
// # Graceful Shutdown
//
//  1. Shutdown main HTTP server (30s timeout)
//  2. Shutdown metrics server (if running)
//  3. Stop metrics collector and session cleanup
//  4. Close session store
//  5. Close database connections
//
// # Build Requirements
//
// CGO is required for the SQLite driver:
//
//	CGO_ENABLED=1 go build -o storyhub ./cmd/storyhub
//
// # Related Packages
//
//   - [storyhub/internal/database]: SQLite persistence and migrations
//   - [storyhub/internal/handlers]: HTTP request handlers
//   - [storyhub/internal/content]: Ownership-checked content operations
//   - [storyhub/internal/session]: Session stores and actor resolution
//   - [storyhub/internal/middleware]: HTTP middleware (logging, metrics, compression)
//   - [storyhub/internal/startup]: Configuration and initialization
//   - [storyhub/internal/memory]: Container-aware GOMEMLIMIT
package main
