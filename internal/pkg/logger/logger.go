// Package logger adapts charmbracelet/log to the ports.Logger interface.
package logger

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// CharmLogger routes structured log records to a charmbracelet logger.
type CharmLogger struct {
	inner *charmlog.Logger
}

// New creates a CharmLogger writing to stderr. Verbose enables debug output.
func New(verbose bool) *CharmLogger {
	inner := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	})
	if verbose {
		inner.SetLevel(charmlog.DebugLevel)
	} else {
		inner.SetLevel(charmlog.InfoLevel)
	}
	return &CharmLogger{inner: inner}
}

func (l *CharmLogger) Debug(msg string, fields map[string]interface{}) {
	l.inner.Debug(msg, flatten(fields)...)
}

func (l *CharmLogger) Info(msg string, fields map[string]interface{}) {
	l.inner.Info(msg, flatten(fields)...)
}

func (l *CharmLogger) Warn(msg string, fields map[string]interface{}) {
	l.inner.Warn(msg, flatten(fields)...)
}

func (l *CharmLogger) Error(msg string, err error, fields map[string]interface{}) {
	kv := flatten(fields)
	if err != nil {
		kv = append(kv, "error", err)
	}
	l.inner.Error(msg, kv...)
}

func flatten(fields map[string]interface{}) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
