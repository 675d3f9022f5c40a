package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterPattern(t *testing.T) {
	f := &formatter{pattern: "%time [%level] %msg %field\n", time: "15:04:05"}

	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2025, 1, 2, 10, 20, 30, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{"b": 2, "a": 1},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "10:20:30 [info] hello a=1,b=2\n", string(out))
}

func TestMultiWriterFansOut(t *testing.T) {
	var a, b bytes.Buffer
	w := NewMultiWriter().Add(&a).Add(&b)

	n, err := w.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "x", a.String())
	assert.Equal(t, "x", b.String())
}

func TestInitAndGetLogger(t *testing.T) {
	Init(Config{Level: "debug"})
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.IsDebugEnabled())

	Init(Config{Level: "warn"})
	assert.False(t, GetLogger().IsDebugEnabled())

	// unknown levels fall back to info
	Init(Config{Level: "nonsense"})
	assert.False(t, GetLogger().IsDebugEnabled())

	Init(DefaultConfig())
}

func TestConfigFromMap(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]interface{}{
		"level": "trace",
		"file": map[string]interface{}{
			"filename": "/tmp/nodo.log",
			"max_size": 16,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Level)
	require.NotNil(t, cfg.File)
	assert.Equal(t, "/tmp/nodo.log", cfg.File.Filename)
	assert.Equal(t, 16, cfg.File.MaxSize)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultConfig().Pattern, cfg.Pattern)
}

func TestWithFieldsReturnsDerivedLogger(t *testing.T) {
	logger := GetLogger().WithField("worker", 1).WithFields(map[string]interface{}{"k": "v"})
	require.NotNil(t, logger)
	logger.Debug("derived loggers must not panic")
}
