// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. Init configures it; before Init it logs text at info level.
var Log = logrus.New()

// Init sets output format and level. Production logs are JSON so they can be shipped as-is.
func Init(production bool, level string) {
	Log.SetOutput(os.Stdout)
	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}

// WithUser returns an entry tagged with the acting user.
func WithUser(userID string) *logrus.Entry {
	return Log.WithField("user_id", userID)
}
