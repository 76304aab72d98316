package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/salesdash/internal/cache"
	"github.com/yourorg/salesdash/internal/config"
	"github.com/yourorg/salesdash/internal/events"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.FromEnv(func(key string) string {
		switch key {
		case "BCRYPT_COST":
			return "10"
		case "HTTP_BODY_LIMIT":
			return "64"
		}
		return ""
	})
	require.NoError(t, err)
	return cfg
}

func TestBuildApp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mem := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = mem.Close() })

	app, err := buildApp(testConfig(t), logging.Discard(), store.New(db, store.MySQL), mem, events.NewHub(logging.Discard()), nil)
	require.NoError(t, err)

	t.Run("health", func(t *testing.T) {
		mock.ExpectPing()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("unknown route is json 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body["error"], "Cannot GET")
	})

	t.Run("body over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.com","password":"`+strings.Repeat("x", 200)+`"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("protected route needs bearer", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildApp_RejectsShortSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWT.Secret = "short"

	_, err := buildApp(cfg, logging.Discard(), nil, cache.NewMemoryStore(0), nil, nil)
	assert.Error(t, err)
}

func TestOpenCache_FallsBackToMemory(t *testing.T) {
	cfg := testConfig(t)
	cs, limiter := openCache(t.Context(), cfg, logging.Discard())
	assert.Equal(t, "memory", cs.Name())
	assert.Nil(t, limiter)

	cfg.Redis.Addr = "127.0.0.1:1"
	start := time.Now()
	cs, limiter = openCache(t.Context(), cfg, logging.Discard())
	assert.Equal(t, "memory", cs.Name())
	assert.Nil(t, limiter)
	assert.Less(t, time.Since(start), 5*time.Second)
}
