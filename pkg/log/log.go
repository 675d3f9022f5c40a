// Package log provides the runtime's logging facade: a Logger interface
// backed by logrus, with a pattern formatter and pluggable appenders.
package log

import "sync"

// Logger is the leveled logging surface used throughout the runtime.
type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
}

// Config selects level, line pattern and appenders.
type Config struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Pattern is the line layout, e.g. "%time [%level] %msg %field\n".
	Pattern string `mapstructure:"pattern"`

	// Time is the timestamp layout in Go reference time format.
	Time string `mapstructure:"time"`

	// File enables an additional rotating file appender when set.
	File *FileAppenderConfig `mapstructure:"file"`
}

// DefaultConfig is the configuration used before Init is called.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Pattern: "%time [%level] %msg %field\n",
		Time:    "2006-01-02 15:04:05.000",
	}
}

var (
	mu     sync.RWMutex
	logger Logger = newLogrusLogger(DefaultConfig())
)

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init replaces the process-wide logger according to the configuration.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogrusLogger(cfg)
}
