package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "production", false)

	log.WithField("order_id", "abc").Info("order created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["order_id"])
	assert.Equal(t, "order created", entry["msg"])
}

func TestNew_DebugLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewWithOutput(&bytes.Buffer{}, "development", true).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput(&bytes.Buffer{}, "development", false).GetLevel())
}
