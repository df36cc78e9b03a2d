package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"storyhub/internal/database"
	"storyhub/internal/handlers"
	"storyhub/internal/logging"
	"storyhub/internal/memory"
	"storyhub/internal/metrics"
	"storyhub/internal/middleware"
	"storyhub/internal/session"
	"storyhub/internal/startup"
)

const (
	sessionCleanupInterval = time.Hour
	metricsCollectInterval = time.Minute
	shutdownTimeout        = 30 * time.Second
)

func main() {
	startTime := time.Now()

	// Size the heap to the container before anything large is allocated
	memory.ConfigureFromEnv(os.Getenv)

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	schemaVersion, err := db.SchemaVersion()
	if err != nil {
		logging.Warn("Could not read schema version: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart), schemaVersion)

	// Session store
	store, closeStore, err := newSessionStore(config, db)
	if err != nil {
		db.Close()
		startup.LogFatal("Failed to initialize session store: %v", err)
	}
	startup.LogSessionStoreInit(config.SessionStore, config.SessionTTL)

	stopCleanup := make(chan struct{})
	if cleaner, ok := store.(session.Cleaner); ok {
		go cleanSessions(cleaner, stopCleanup)
	}

	h := handlers.New(db, store, config.SessionTTL)

	// Default admin
	created, err := h.Accounts().SeedAdmin(context.Background(), config.AdminUsername, config.AdminPassword)
	if err != nil {
		startup.LogFatal("Failed to seed admin account: %v", err)
	}
	startup.LogAdminSeeded(config.AdminUsername, created)

	// Metrics
	metrics.InitializeMetrics(startup.Version, startup.Commit, startup.GoVersion)
	collector := metrics.NewCollector(h.Reporter(), metricsCollectInterval)
	collector.Start()

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Middleware, innermost first
	handler := h.SessionMiddleware(router)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.RequestID(middleware.UUIDGenerator{})(handler)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(h, config.MetricsPort)
	}

	go handleShutdown(shutdown{
		srv:         srv,
		metricsSrv:  metricsSrv,
		collector:   collector,
		stopCleanup: stopCleanup,
		closeStore:  closeStore,
		db:          db,
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	// ListenAndServe returns as soon as Shutdown starts; wait for it to finish.
	<-shutdownDone
}

var shutdownDone = make(chan struct{})

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(r)
	return r
}

// newSessionStore picks the configured backend. The returned close func
// releases backend connections.
func newSessionStore(config *startup.Config, db *database.Database) (session.Store, func() error, error) {
	switch config.SessionStore {
	case startup.SessionStoreRedis:
		store := session.NewRedisStore(config.RedisAddr, config.RedisPassword, config.RedisPrefix, config.SessionTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("redis at %s: %w", config.RedisAddr, err)
		}
		return store, store.Close, nil
	default:
		return session.NewSQLStore(db, config.SessionTTL), func() error { return nil }, nil
	}
}

func cleanSessions(cleaner session.Cleaner, stop <-chan struct{}) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := cleaner.CleanExpired(ctx)
			cancel()
			if err != nil {
				logging.Warn("Session cleanup failed: %v", err)
			} else if n > 0 {
				logging.Debug("Removed %d expired sessions", n)
			}
		}
	}
}

func startMetricsServer(h *handlers.Handlers, port string) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/healthz", h.LivenessCheck)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

type shutdown struct {
	srv         *http.Server
	metricsSrv  *http.Server
	collector   *metrics.Collector
	stopCleanup chan struct{}
	closeStore  func() error
	db          *database.Database
}

func handleShutdown(s shutdown) {
	defer close(shutdownDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if s.metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := s.metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Stopping background workers")
	s.collector.Stop()
	close(s.stopCleanup)
	startup.LogShutdownStepComplete("Background workers stopped")

	startup.LogShutdownStep("Closing session store")
	if err := s.closeStore(); err != nil {
		logging.Warn("Session store close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Session store closed")
	}

	startup.LogShutdownStep("Closing database")
	if err := s.db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
