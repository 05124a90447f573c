package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"sacncore/internal/config"
)

type Log struct {
	*logrus.Entry
}

// NewLogger builds the process logger from its configuration.
func NewLogger(cfg config.LogConf) (*Log, error) {
	log := logrus.New()

	log.SetOutput(os.Stdout)

	log.Formatter = &logrus.TextFormatter{
		TimestampFormat:  "2006-01-02 15:04:05.0000",
		DisableColors:    false,
		ForceColors:      true,
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: bad settings (level: %s): %w", cfg.Level, err)
	}
	log.SetLevel(level)
	// Every subsystem logs through this logger from its own goroutine; with
	// the internal lock skipped, entries reach os.Stdout unserialised.
	log.SetNoLock()
	log.Debug("set level: ", level)

	return &Log{Entry: log.WithFields(nil)}, nil
}

// With adds fields to the formatted log entry.
func (l *Log) With(fields Fields) *Log {
	return &Log{Entry: l.WithFields(logrus.Fields(fields))}
}

func (l *Log) GetLevel() string {
	return l.Logger.Level.String()
}

// CheckLogLevel reports whether level is enabled for conditional, hot-path
// logging (§6 checkLogLevel). level follows the config vocabulary
// (minimal, detail, interval) mapped onto logrus severities.
func (l *Log) CheckLogLevel(level string) bool {
	switch level {
	case "minimal":
		return l.Logger.IsLevelEnabled(logrus.WarnLevel)
	case "detail":
		return l.Logger.IsLevelEnabled(logrus.InfoLevel)
	case "interval":
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	default:
		return false
	}
}

// Fields are a representation of formatted log fields.
type Fields map[string]interface{}

// Logger is the logging surface every subsystem is constructed with.
type Logger interface {
	GetLevel() string
	With(fields Fields) *Log
	CheckLogLevel(level string) bool
}
