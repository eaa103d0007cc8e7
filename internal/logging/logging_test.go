package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"socialize/internal/logging"
	"socialize/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "debug", "json")

	log.Debug("user registered", "user", &models.User{ID: 1, Username: "bob", Password: "$2a$04$secrethash"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user registered", entry["msg"])
	assert.Equal(t, map[string]any{"id": float64(1), "username": "bob", "deleted": false}, entry["user"])
	assert.NotContains(t, buf.String(), "secrethash")
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "warn", "text")

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
