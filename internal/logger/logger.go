// Package logger owns the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. Before Init it writes info and above to stderr
// with logrus defaults.
var Log = logrus.New()

// Init configures Log from the environment. LOG_LEVEL takes any logrus level
// name (default info); LOG_FORMAT=json switches to structured output. Logs go
// to stderr so report output on stdout stays clean.
func Init() {
	InitTo(os.Stderr)
}

// InitTo is Init with an explicit destination.
func InitTo(w io.Writer) {
	Log = logrus.New()

	level, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	Log.SetOutput(w)
}

// Component returns a logger tagged with a component field.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
