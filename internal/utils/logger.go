package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface packages take when they do not need
// request fields.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// AppLogger is the application logger. Messages are printf style; fields
// added with WithFields are attached to every message of the derived logger.
type AppLogger struct {
	entry *logrus.Entry
}

// NewAppLogger returns an info level text logger writing to stdout.
func NewAppLogger() *AppLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &AppLogger{entry: logrus.NewEntry(l)}
}

// NewAppLoggerFromConfig builds a logger for the log section of the config.
func NewAppLoggerFromConfig(cfg LogConfig) (*AppLogger, error) {
	logger := NewAppLogger()
	if err := logger.configure(cfg, os.Stdout); err != nil {
		return nil, err
	}
	return logger, nil
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *AppLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &AppLogger{entry: logrus.NewEntry(l)}
}

func (l *AppLogger) configure(cfg LogConfig, out io.Writer) error {
	base := l.entry.Logger
	base.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	base.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}
	return nil
}

// WithFields returns a logger that adds fields to every message.
func (l *AppLogger) WithFields(fields map[string]interface{}) *AppLogger {
	return &AppLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

var _ Logger = (*AppLogger)(nil)
