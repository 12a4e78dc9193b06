package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json formatter and parsed level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := New("debug", "json", buf)

		assert.Equal(t, logrus.DebugLevel, log.GetLevel())
		log.Debug("hello")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		log := New("loud", "text", &bytes.Buffer{})
		assert.Equal(t, logrus.InfoLevel, log.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	})
}

func TestLogError(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("info", "json", buf)

	LogError(log, "payment", "RevertPayment", logrus.Fields{"payment_id": "p-1"}, errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "payment", entry["module"])
	assert.Equal(t, "RevertPayment", entry["operation"])
	assert.Equal(t, "p-1", entry["payment_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "error", entry["level"])
}
