package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"storyhub/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Session store backends.
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
)

// DatabaseFile is the SQLite file name inside DATABASE_DIR.
const DatabaseFile = "storyhub.db"

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "123456"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// FileConfig is the optional TOML configuration file. Environment variables
// override any value set here.
type FileConfig struct {
	Port            string `toml:"port"`
	MetricsPort     string `toml:"metrics_port"`
	MetricsEnabled  *bool  `toml:"metrics_enabled"`
	DatabaseDir     string `toml:"database_dir"`
	LogHealthChecks *bool  `toml:"log_health_checks"`
	Session         struct {
		Store string `toml:"store"` // "sqlite" (default) or "redis"
		TTL   string `toml:"ttl"`
	} `toml:"session"`
	Redis struct {
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		Prefix   string `toml:"prefix"`
	} `toml:"redis"`
	Admin struct {
		Username string `toml:"username"`
		Password string `toml:"password"`
	} `toml:"admin"`
}

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	DatabaseDir     string
	LogHealthChecks bool

	SessionStore  string
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	AdminUsername string
	AdminPassword string

	// Derived paths
	DatabasePath string
}

// ReadConfigFile decodes a TOML configuration file.
func ReadConfigFile(path string) (*FileConfig, error) {
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return &fc, nil
}

// LoadConfig loads .env, the optional CONFIG_FILE and the environment, in
// increasing order of precedence, and prepares the database directory.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	section("CONFIGURATION")

	if err := godotenv.Load(); err == nil {
		logging.Info("  Loaded .env file")
	}

	fc := &FileConfig{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if fc, err = ReadConfigFile(path); err != nil {
			return nil, err
		}
		logging.Info("  CONFIG_FILE:         %s", path)
	}

	config, err := resolveConfig(fc)
	if err != nil {
		return nil, err
	}

	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  DATABASE_DIR:        %s", config.DatabaseDir)
	logging.Info("  SESSION_STORE:       %s", config.SessionStore)
	logging.Info("  SESSION_TTL:         %s", config.SessionTTL)
	if config.SessionStore == SessionStoreRedis {
		logging.Info("  REDIS_ADDR:          %s", config.RedisAddr)
		logging.Info("  REDIS_PREFIX:        %s", config.RedisPrefix)
	}
	logging.Info("  ADMIN_USERNAME:      %s", config.AdminUsername)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	if config.AdminPassword == defaultAdminPassword {
		logging.Warn("  ADMIN_PASSWORD is the built-in default; set it before exposing the site")
	}

	section("DIRECTORY SETUP")
	logging.Info("  Database directory (absolute): %s", config.DatabaseDir)

	if err := ensureDirectory(config.DatabaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	return config, nil
}

// resolveConfig merges fc with the environment and applies defaults.
func resolveConfig(fc *FileConfig) (*Config, error) {
	databaseDir, err := filepath.Abs(getEnv("DATABASE_DIR", orDefault(fc.DatabaseDir, "./data")))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}

	sessionStore := strings.ToLower(getEnv("SESSION_STORE", orDefault(fc.Session.Store, SessionStoreSQLite)))
	if sessionStore != SessionStoreSQLite && sessionStore != SessionStoreRedis {
		return nil, fmt.Errorf("unknown SESSION_STORE %q (want %s or %s)", sessionStore, SessionStoreSQLite, SessionStoreRedis)
	}

	ttlStr := getEnv("SESSION_TTL", orDefault(fc.Session.TTL, "168h"))
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		logging.Warn("  Invalid SESSION_TTL %q, using default: 168h", ttlStr)
		ttl = 168 * time.Hour
	}

	config := &Config{
		Port:            getEnv("PORT", orDefault(fc.Port, "8080")),
		MetricsPort:     getEnv("METRICS_PORT", orDefault(fc.MetricsPort, "9090")),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", boolOrDefault(fc.MetricsEnabled, true)),
		DatabaseDir:     databaseDir,
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", boolOrDefault(fc.LogHealthChecks, false)),
		SessionStore:    sessionStore,
		SessionTTL:      ttl,
		RedisAddr:       getEnv("REDIS_ADDR", orDefault(fc.Redis.Addr, "localhost:6379")),
		RedisPassword:   getEnv("REDIS_PASSWORD", fc.Redis.Password),
		RedisPrefix:     getEnv("REDIS_PREFIX", orDefault(fc.Redis.Prefix, "storyhub:session")),
		AdminUsername:   getEnv("ADMIN_USERNAME", orDefault(fc.Admin.Username, defaultAdminUsername)),
		AdminPassword:   getEnv("ADMIN_PASSWORD", orDefault(fc.Admin.Password, defaultAdminPassword)),
		DatabasePath:    filepath.Join(databaseDir, DatabaseFile),
	}
	return config, nil
}

func orDefault(value, def string) string {
	if value != "" {
		return value
	}
	return def
}

func boolOrDefault(value *bool, def bool) bool {
	if value != nil {
		return *value
	}
	return def
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration, schemaVersion uint) {
	section("DATABASE INITIALIZATION")
	logging.Info("  [OK] Database initialized in %v", duration)
	logging.Info("  Schema version: %d", schemaVersion)
}

// LogSessionStoreInit logs which session backend is in use
func LogSessionStoreInit(store string, ttl time.Duration) {
	section("SESSION STORE")
	logging.Info("  Backend:     %s", store)
	logging.Info("  Session TTL: %v", ttl)
}

// LogAdminSeeded logs the outcome of the default admin check
func LogAdminSeeded(username string, created bool) {
	if created {
		logging.Info("  [OK] Created default admin account %q", username)
	} else {
		logging.Info("  [OK] Admin account %q present", username)
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		sort.SliceStable(routes, func(i, j int) bool {
			return getRouteGroup(routes[i].Path) < getRouteGroup(routes[j].Path)
		})
		current := "\x00"
		for _, route := range routes {
			if group := getRouteGroup(route.Path); group != current {
				current = group
				logging.Debug("  [%s]", orDefault(group, "root"))
			}
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	parts := strings.SplitN(path, "/", 3)
	first := parts[0]

	// /author/{id} is public, /author/dashboard and friends are not.
	if first == "author" && len(parts) > 1 && !strings.HasPrefix(parts[1], "{") {
		return "author-tools"
	}
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       %s", enabledString(false))
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info(rule)
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	section("SHUTDOWN INITIATED (received %s)", signal)
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

const rule = "------------------------------------------------------------"

// section starts a titled block of startup output.
func section(title string, args ...interface{}) {
	logging.Info("")
	logging.Info(rule)
	logging.Info(title, args...)
	logging.Info(rule)
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
   _____ __                  __          __
  / ___// /_____  _______  _/ /_  __  __/ /_
  \__ \/ __/ __ \/ ___/ / / / __ \/ / / / __ \
 ___/ / /_/ /_/ / /  / /_/ / / / / /_/ / /_/ /
/____/\__/\____/_/   \__, /_/ /_/\__,_/_.___/
                    /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
