package middleware_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialize/internal/middleware"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jwt.MapClaims), args.Error(1)
}

func newApp(v middleware.TokenValidator) *fiber.App {
	app := fiber.New()
	app.Use(middleware.AuthRequired(v, slog.New(slog.NewTextHandler(io.Discard, nil))))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := middleware.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.JSON(fiber.Map{"id": id})
	})
	return app
}

func get(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	validator := new(MockTokenValidator)
	app := newApp(validator)

	validator.On("ValidateToken", "good").Return(jwt.MapClaims{"user_id": float64(42), "username": "bob"}, nil).Once()
	resp := get(t, app, "Bearer good")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":42}`, string(body))

	validator.On("ValidateToken", "expired").Return(nil, errors.New("invalid token")).Once()
	resp = get(t, app, "Bearer expired")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	validator.On("ValidateToken", "anonymous").Return(jwt.MapClaims{"username": "bob"}, nil).Once()
	resp = get(t, app, "Bearer anonymous")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	validator.AssertExpectations(t)
}

func TestAuthRequired_BadHeader(t *testing.T) {
	validator := new(MockTokenValidator)
	app := newApp(validator)

	for _, header := range []string{"", "Bearer", "Token good", "good"} {
		resp := get(t, app, header)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
	}
	validator.AssertNotCalled(t, "ValidateToken", mock.Anything)
}
