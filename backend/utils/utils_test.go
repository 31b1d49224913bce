package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lessons/backend/errs"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[errs.Kind]int{
		errs.KindUnauthorized:      http.StatusUnauthorized,
		errs.KindForbidden:         http.StatusForbidden,
		errs.KindNotFound:          http.StatusNotFound,
		errs.KindSessionNotFound:   http.StatusNotFound,
		errs.KindConflict:          http.StatusConflict,
		errs.KindPaymentIncomplete: http.StatusPaymentRequired,
		errs.KindInvalidSession:    http.StatusBadRequest,
		errs.KindGateway:           http.StatusBadGateway,
		errs.KindValidation:        http.StatusUnprocessableEntity,
		errs.KindInternal:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func render(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return Fail(c, err) })

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, testErr)
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestFail(t *testing.T) {
	t.Run("kinded error keeps its message", func(t *testing.T) {
		status, body := render(t, fmt.Errorf("wrapped: %w", errs.Forbidden("premium only")))
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, string(errs.KindForbidden), body.Code)
		assert.Contains(t, body.Message, "premium only")
		assert.False(t, body.Success)
	})

	t.Run("internal errors are not echoed", func(t *testing.T) {
		status, body := render(t, errors.New("pq: password authentication failed"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "internal server error", body.Message)
	})

	t.Run("validation carries fields", func(t *testing.T) {
		status, body := render(t, errs.Validation("invalid request body", map[string]string{"title": "required"}))
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, map[string]interface{}{"title": "required"}, body.Details)
	})

	t.Run("fiber errors keep their code", func(t *testing.T) {
		status, _ := render(t, fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON"))
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestRedact(t *testing.T) {
	out := redact([]interface{}{"email", "a@x.com", "Authorization", "Bearer abc", "stripe_secret", "sk_live", "dangling"})
	assert.Equal(t, []interface{}{
		"email", "a@x.com",
		"Authorization", "[REDACTED]",
		"stripe_secret", "[REDACTED]",
		"dangling",
	}, out)
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken("a@x.com", "s1", time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWTToken(token, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims["email"])

	_, err = ParseJWTToken(token, "s2")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateJWTToken("a@x.com", "s1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWTToken(expired, "s1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Equal(t, "abc", BearerToken("abc"))
	assert.Equal(t, "", BearerToken("Basic dXNlcjpwYXNz"))
	assert.Equal(t, "", BearerToken(""))
}
