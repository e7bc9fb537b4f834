package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-questions/internal/admin"
	"github.com/p-n-ai/pai-questions/internal/analytics"
	"github.com/p-n-ai/pai-questions/internal/api"
	"github.com/p-n-ai/pai-questions/internal/browse"
	"github.com/p-n-ai/pai-questions/internal/catalog"
	"github.com/p-n-ai/pai-questions/internal/platform/cache"
	"github.com/p-n-ai/pai-questions/internal/platform/config"
	"github.com/p-n-ai/pai-questions/internal/platform/database"
	"github.com/p-n-ai/pai-questions/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	checks := map[string]check{}

	var db *database.DB
	if cfg.HasDatabase() {
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}
		checks["database"] = db.HealthCheck
	}

	src, err := newSource(cfg, db)
	if err != nil {
		slog.Error("failed to configure catalog source", "error", err)
		os.Exit(1)
	}
	// A failed load is not fatal: the browser shows the load-failed state.
	cat := catalog.Open(ctx, src)
	index := browse.NewIndex(cat.Records(), cat.Err())

	var sessions session.Store = session.NewMemoryStore()
	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		sessions = session.NewRedisStore(c.Client, time.Duration(cfg.Cache.SessionTTL)*time.Minute)
		checks["cache"] = c.HealthCheck
		slog.Info("sessions stored in cache", "ttl_minutes", cfg.Cache.SessionTTL)
	}

	var events analytics.EventLogger = analytics.NopEventLogger{}
	if db != nil {
		events = analytics.NewPostgresEventLogger(db.Pool)
	}

	var editor *admin.Editor
	if cfg.Admin.Enabled {
		editor = admin.NewEditor(cat.Records())
		slog.Info("admin editor enabled", "questions", cat.Len())
	}

	handler := api.NewHandler(api.Config{
		Index:    index,
		Sessions: sessions,
		Editor:   editor,
		Events:   events,
		Logger:   logger,
	})

	mux := newMux(checks)
	handler.Register(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Logging(logger)(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "source", cat.Source(), "questions", cat.Len())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newSource(cfg *config.Config, db *database.DB) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.SourceHTTP:
		return catalog.NewHTTPSource(cfg.Catalog.URL), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres source needs a database")
		}
		return catalog.NewPostgresSource(db.Pool), nil
	default:
		return catalog.FileSource{Path: cfg.Catalog.Path}, nil
	}
}

// check reports whether a backing service is reachable.
type check func(ctx context.Context) error

// newMux creates the HTTP router with health check endpoints.
func newMux(checks map[string]check) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", readyzHandler(checks))
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func readyzHandler(checks map[string]check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, fn := range checks {
			if err := fn(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "failed": failed})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
