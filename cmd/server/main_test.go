package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-questions/internal/platform/config"
)

func TestHealthEndpoints(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]check
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz without dependencies returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "readyz with healthy dependencies returns 200",
			checks:     map[string]check{"database": healthy, "cache": healthy},
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "readyz with a failing dependency returns 503",
			checks:     map[string]check{"database": healthy, "cache": down},
			path:       "/readyz",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"failed":{"cache":"connection refused"},"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMux(tt.checks)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.CatalogConfig
		wantName string
		wantErr  bool
	}{
		{"file", config.CatalogConfig{Source: config.SourceFile, Path: "q.json"}, "file:q.json", false},
		{"http", config.CatalogConfig{Source: config.SourceHTTP, URL: "http://example.com/q.json"}, "http://example.com/q.json", false},
		{"postgres without database", config.CatalogConfig{Source: config.SourcePostgres}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := newSource(&config.Config{Catalog: tt.cfg}, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newSource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if src.String() != tt.wantName {
				t.Errorf("String() = %q, want %q", src.String(), tt.wantName)
			}
		})
	}
}

func TestNewLogger_LevelFallback(t *testing.T) {
	logger := newLogger(config.LogConfig{Level: "nonsense", Format: "text"})
	if !logger.Enabled(context.Background(), 0) {
		t.Error("info should be enabled when the level is unparseable")
	}
	logger = newLogger(config.LogConfig{Level: "error", Format: "json"})
	if logger.Enabled(context.Background(), 0) {
		t.Error("info should be disabled at error level")
	}
}
