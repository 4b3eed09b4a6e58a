// Package logger builds the process-wide logrus logger.  Components derive
// their own entry with a "component" field instead of using a global.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger for the given environment.  Production emits JSON,
// everything else human-readable text.  LOG_LEVEL overrides the default
// level (info in production, debug otherwise).
func New(env string) *logrus.Logger {
	return NewWithWriter(env, os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter is New with an explicit output and level string.
func NewWithWriter(env string, w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	prod := strings.EqualFold(env, "prod") || strings.EqualFold(env, "production")
	if prod {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}
	if level != "" {
		if lv, err := logrus.ParseLevel(level); err == nil {
			l.SetLevel(lv)
		}
	}
	return l
}
