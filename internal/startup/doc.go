// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads a .env file if present, then the TOML file named by
// CONFIG_FILE, then the environment. Environment variables win. Supported
// variables:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - DATABASE_DIR: Directory holding storyhub.db (default: ./data)
//   - SESSION_STORE: sqlite or redis (default: sqlite)
//   - SESSION_TTL: Session lifetime as Go duration (default: 168h)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_PREFIX: Redis session store settings
//   - ADMIN_USERNAME, ADMIN_PASSWORD: Account seeded at startup (default: admin/123456)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//
// The TOML file uses the same names in lower case, with session, redis and
// admin settings in their own tables:
//
//	port = "8080"
//
//	[session]
//	store = "redis"
//	ttl = "24h"
//
//	[redis]
//	addr = "localhost:6379"
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// [LogDatabaseInit], [LogSessionStoreInit], [LogHTTPRoutes],
// [LogServerStarted] and the LogShutdown* helpers print the startup and
// shutdown sections in a consistent format.
package startup
