package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/models"
	"github.com/yourorg/salesdash/internal/store"
	"github.com/yourorg/salesdash/internal/validation"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"malformed body", validation.ErrMalformedBody, http.StatusBadRequest, "Invalid request body"},
		{"validation", validation.Errors{{Field: "name", Message: "Name is required"}}, http.StatusBadRequest, "Validation failed"},
		{"not found", fmt.Errorf("lookup: %w", store.ErrNotFound), http.StatusNotFound, "Not found"},
		{"conflict", fmt.Errorf("%w: duplicate", store.ErrConflict), http.StatusConflict, "Record already exists"},
		{"anything else", errors.New("secret internals"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, logging.Discard(), tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedError, body.Error)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Get("/panic-free", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Cannot GET /nope", body.Error)

	resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic-free", nil))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp2.StatusCode)
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Error)
}
