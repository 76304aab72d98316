package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/salesdash/internal/auth"
	"github.com/yourorg/salesdash/internal/events"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/middleware"
	"github.com/yourorg/salesdash/internal/store"
	"github.com/yourorg/salesdash/internal/validation"
)

const testSecret = "test-secret-0123456789abcdefghijklmnop"

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Notify(_ context.Context, ev events.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

type testEnv struct {
	app    *fiber.App
	mock   sqlmock.Sqlmock
	tokens *auth.TokenService
	hasher *auth.PasswordHasher
	events *recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenService(testSecret, time.Hour, "salesdash")
	require.NoError(t, err)

	var (
		gw     = store.New(db, store.MySQL)
		hasher = auth.NewPasswordHasher(auth.MinCost)
		v      = validation.New()
		log    = logging.Discard()
		rec    = &recorder{}
	)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})

	ah := NewAuthHandler(gw, hasher, tokens, v, log)
	app.Post("/auth/register", ah.Register)
	app.Post("/auth/login", ah.Login)
	app.Get("/users", middleware.RequireAuth(tokens), ah.GetUser)
	app.Post("/users", ah.CreateUser)

	ph := NewResourceHandler(Products, gw, v, rec, log)
	ph.now = func() time.Time { return fixedNow }
	app.Get("/products", ph.List)
	app.Post("/products", ph.Create)
	app.Get("/products/:id", ph.Get)
	app.Put("/products/:id", ph.Update)
	app.Delete("/products/:id", ph.Delete)

	sh := NewResourceHandler(StoreVisits, gw, v, rec, log)
	app.Post("/store-visits", sh.Create)

	return &testEnv{app: app, mock: mock, tokens: tokens, hasher: hasher, events: rec}
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (e *testEnv) bearer(t *testing.T, userID, email string) []string {
	t.Helper()
	tok, _, err := e.tokens.Issue(userID, email)
	require.NoError(t, err)
	return []string{"Authorization", "Bearer " + tok}
}
