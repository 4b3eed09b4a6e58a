package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("prod", &buf, "")
	l.WithField("component", "test").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "test", line["component"])
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestLevelOverride(t *testing.T) {
	l := NewWithWriter("dev", &bytes.Buffer{}, "warn")
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l = NewWithWriter("dev", &bytes.Buffer{}, "nonsense")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}
