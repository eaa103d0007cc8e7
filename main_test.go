package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialize/internal/config"
	"socialize/internal/services"
)

// MockRabbitMQClient is a mock implementation of the RabbitMQ publisher
type MockRabbitMQClient struct {
	mock.Mock
}

func (m *MockRabbitMQClient) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	v := viper.New()
	v.Set("DATABASE_DRIVER", "sqlite")
	v.Set("DATABASE_DSN", "file:"+t.Name()+"?mode=memory&cache=shared")
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("BCRYPT_COST", 4)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerStartupAndHealthCheck(t *testing.T) {
	app, _, err := NewApp(testConfig(t), quietLogger(), nil)
	require.NoError(t, err)

	// --- Test Health Endpoint ---
	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		bodyBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(bodyBytes), "\"status\":\"healthy\"", "Health check response body does not contain expected status")
	})

	// --- Test Unauthenticated Access ---
	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "Expected Unauthorized for /users/me without token")
	})
}

func TestRegistrationPublishesEventAndCountsMetric(t *testing.T) {
	mockMQ := new(MockRabbitMQClient)
	mockMQ.On("Publish", services.UserEventsExchange, services.EventUserRegistered, mock.Anything).Return(nil).Once()

	app, _, err := NewApp(testConfig(t), quietLogger(), mockMQ)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{
		"username": "bob",
		"email":    "b@x.com",
		"password": "longenough1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	mockMQ.AssertExpectations(t)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	metricsBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metricsBody), `socialize_registrations_total{result="success"} 1`)
}

func TestNewAppRejectsUnknownPasswordScheme(t *testing.T) {
	cfg := testConfig(t)
	cfg.PasswordScheme = "md5"

	_, _, err := NewApp(cfg, quietLogger(), nil)
	assert.Error(t, err)
}
