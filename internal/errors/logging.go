package errors

import (
	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with structured error logging
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a new structured logger
func NewLogger() *Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{Logger: logger}
}

// WrapLogger wraps an existing logrus logger
func WrapLogger(logger *logrus.Logger) *Logger {
	return &Logger{Logger: logger}
}

func (l *Logger) entryFor(err error) *logrus.Entry {
	entry := l.Logger.WithError(err)

	if appErr, ok := err.(*AppError); ok {
		entry = entry.WithField("error_code", appErr.Code)
		for k, v := range appErr.Context {
			entry = entry.WithField(k, v)
		}
	}

	return entry
}

// LogError logs an error with structured context
func (l *Logger) LogError(err error, message string, fields ...logrus.Fields) {
	entry := l.entryFor(err)
	for _, field := range fields {
		entry = entry.WithFields(field)
	}
	entry.Error(message)
}

// LogWarn logs a warning with structured context
func (l *Logger) LogWarn(err error, message string, fields ...logrus.Fields) {
	entry := l.entryFor(err)
	for _, field := range fields {
		entry = entry.WithFields(field)
	}
	entry.Warn(message)
}

// WithContext adds context fields to subsequent log entries
func (l *Logger) WithContext(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}
