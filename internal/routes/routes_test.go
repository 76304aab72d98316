package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/salesdash/internal/auth"
	"github.com/yourorg/salesdash/internal/cache"
	"github.com/yourorg/salesdash/internal/dashboard"
	"github.com/yourorg/salesdash/internal/events"
	"github.com/yourorg/salesdash/internal/handlers"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/store"
	"github.com/yourorg/salesdash/internal/validation"
)

const testSecret = "routes-secret-0123456789abcdefghijkl"

var userCols = []string{"id", "email", "name", "password_hash", "created_at"}

type server struct {
	app    *fiber.App
	mock   sqlmock.Sqlmock
	tokens *auth.TokenService
	cache  *cache.MemoryStore
}

func newServer(t *testing.T) *server {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenService(testSecret, time.Hour, "salesdash")
	require.NoError(t, err)

	log := logging.Discard()
	gw := store.New(db, store.MySQL)
	v := validation.New()
	mem := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = mem.Close() })

	hub := events.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	summary := dashboard.NewService(gw, mem, time.Minute, log)
	notify := events.Fanout{summary, hub}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	Register(app, Deps{
		Tokens:        tokens,
		Auth:          handlers.NewAuthHandler(gw, auth.NewPasswordHasher(auth.MinCost), tokens, v, log),
		Products:      handlers.NewResourceHandler(handlers.Products, gw, v, notify, log),
		WebsiteVisits: handlers.NewResourceHandler(handlers.WebsiteVisits, gw, v, notify, log),
		StoreVisits:   handlers.NewResourceHandler(handlers.StoreVisits, gw, v, notify, log),
		Dashboard:     handlers.NewDashboardHandler(summary, log),
		Health:        handlers.NewHealthHandler("test", handlers.HealthCheck{Name: "database", Ping: gw.Ping}),
		Hub:           hub,
	})
	return &server{app: app, mock: mock, tokens: tokens, cache: mem}
}

func (s *server) do(t *testing.T, method, target, body string, headers ...string) (int, map[string]any) {
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
	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestRegisterThenDuplicate(t *testing.T) {
	s := newServer(t)

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows(userCols))
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "a@b.com", "A", "$2a$10$hash", time.Now()))
	s.mock.ExpectCommit()

	code, body := s.do(t, http.MethodPost, "/api/auth/register", `{"email":"a@b.com","password":"secret1","name":"A"}`)
	require.Equal(t, http.StatusCreated, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "a@b.com", "A", "$2a$10$hash", time.Now()))

	code, body = s.do(t, http.MethodPost, "/api/auth/register", `{"email":"a@b.com","password":"secret1","name":"A"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User already exists", body["error"])
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	s := newServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/products"},
		{http.MethodGet, "/api/products"},
		{http.MethodDelete, "/api/website-visits/x"},
		{http.MethodPut, "/api/store-visits/x"},
		{http.MethodGet, "/api/dashboard/summary"},
		{http.MethodGet, "/api/users"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			code, body := s.do(t, tc.method, tc.path, `{"name":"Mug"}`)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, "Authorization header is required", body["error"])
		})
	}
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestProductWriteInvalidatesSummary(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	require.NoError(t, s.cache.Set(ctx, "dashboard:summary", map[string]int{"total_products": 1}, time.Minute))

	tok, _, err := s.tokens.Issue("u-1", "a@b.com")
	require.NoError(t, err)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "price", "stock_quantity", "description", "status", "created_at"}).
			AddRow("3f1c2a9e-5b7d-4c1e-9a2b-1c2d3e4f5a6b", "Mug", "Kitchen", 9.5, 3, "", "active", time.Now()))
	s.mock.ExpectCommit()

	code, _ := s.do(t, http.MethodPost, "/api/products", `{"name":"Mug","category":"Kitchen","price":9.5,"stock_quantity":3}`,
		"Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusCreated, code)

	var cached map[string]int
	found, err := s.cache.Get(ctx, "dashboard:summary", &cached)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestEventsRoute(t *testing.T) {
	s := newServer(t)
	tok, _, err := s.tokens.Issue("u-1", "a@b.com")
	require.NoError(t, err)

	code, _ := s.do(t, http.MethodGet, "/api/ws/events?token="+tok, "")
	assert.Equal(t, http.StatusUpgradeRequired, code)
}

func TestHealthIsPublic(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	s := newServer(t)

	for i := 0; i < 10; i++ {
		code, _ := s.do(t, http.MethodPost, "/api/auth/login", `{}`)
		require.Equal(t, http.StatusBadRequest, code, "request %d", i+1)
	}
	code, body := s.do(t, http.MethodPost, "/api/auth/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.NotEmpty(t, body["error"])
}
