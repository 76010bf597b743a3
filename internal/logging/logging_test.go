package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithOutput(&buf, "debug", "json")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	Component(logger, "http").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "http", entry["component"])
}

func TestNew_TextIsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithOutput(&buf, "info", "")
	require.NoError(t, err)
	_, ok := logger.Formatter.(*log.TextFormatter)
	assert.True(t, ok)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("chatty", "text")
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
