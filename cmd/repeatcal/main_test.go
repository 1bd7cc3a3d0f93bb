package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/repeatcal/internal/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REPEATCAL_MAX_OCCURRENCES", "20")

	cfg, err := loadConfig(flagConfig{
		configPath: filepath.Join(dir, "repeatcal.yaml"),
		envPath:    filepath.Join(dir, "missing.env"),
		listen:     ":9999",
	})
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, 20, cfg.MaxOccurrences)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("REPEATCAL_HORIZON", "someday")

	_, err := loadConfig(flagConfig{configPath: filepath.Join(t.TempDir(), "repeatcal.yaml")})
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Storage.Driver = driver
			cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "events.db")
			cfg.AllowedOrigins = []string{"http://ui.test"}

			handler, cleanup, err := setup(context.Background(), cfg, logger)
			require.NoError(t, err)
			defer cleanup()

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)

			req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(
				`{"title":"x","date":"2025-11-03","startTime":"09:00","endTime":"10:00","category":"기타","repeat":{"type":"none"}}`))
			req.Header.Set("Origin", "http://ui.test")
			rec = httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, "http://ui.test", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSetup_BasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "alice", Password: "secret"}

	handler, cleanup, err := setup(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("alice", "secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := openStore(config.StorageConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-listen", ":1234", "-config", "x.yaml"})
	require.NoError(t, err)
	assert.Equal(t, ":1234", f.listen)
	assert.Equal(t, "x.yaml", f.configPath)
	assert.Equal(t, ".env", f.envPath)

	_, err = parseFlags([]string{"-nope"})
	assert.Error(t, err)
}
