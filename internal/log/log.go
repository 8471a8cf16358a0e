// Package log provides the daemon-wide logger behind a small interface so the
// backend can be swapped without touching call sites.
package log

import (
	"sync"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	once   sync.Once
	logger Logger
)

func GetLogger() Logger {
	if logger == nil {
		Init(nil)
	}
	return logger
}

// Init configures the global logger. A nil config selects console output at
// info level. Init is a no-op after the first call.
func Init(cfg *LoggerConfig) {
	once.Do(func() {
		if cfg == nil {
			cfg = DefaultConfig()
		}
		if err := initByConfig(cfg); err != nil {
			panic(err)
		}
	})
}
