// Package logging provides structured logging for the breathscope pipeline.
// It wraps logrus behind a small Fields-based interface so DSP packages can
// log without depending on a concrete backend.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields holds structured key-value context attached to log entries
type Fields map[string]any

// Logger is the logging interface used throughout the pipeline
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

var defaultLogger = newRootLogger(os.Stderr, logrus.InfoLevel)

func newRootLogger(out io.Writer, level logrus.Level) *logrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// NewDefaultLogger returns the shared process-wide logger
func NewDefaultLogger() Logger {
	return defaultLogger
}

// WithFields returns the default logger with the given fields attached
func WithFields(fields Fields) Logger {
	return defaultLogger.WithFields(fields)
}

// SetLevel adjusts the default logger's level. Unknown levels fall back to info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	defaultLogger.entry.Logger.SetLevel(parsed)
}

// SetOutput redirects the default logger's output
func SetOutput(out io.Writer) {
	defaultLogger.entry.Logger.SetOutput(out)
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) Debug(msg string, fields ...Fields) {
	l.withMerged(fields).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...Fields) {
	l.withMerged(fields).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...Fields) {
	l.withMerged(fields).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...Fields) {
	l.withMerged(fields).Error(msg)
}

func (l *logrusLogger) withMerged(fields []Fields) *logrus.Entry {
	entry := l.entry
	for _, f := range fields {
		entry = entry.WithFields(logrus.Fields(f))
	}
	return entry
}
