package logger

import (
	"os"

	"gamingrealm-backend/src/internal/config"

	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger from the logs section of the
// configuration. Unknown levels fall back to info.
func Init(cfg *config.Configuration) {
	level, err := logrus.ParseLevel(cfg.Logs.Level)
	if err != nil {
		level = logrus.InfoLevel
		logrus.WithField("level", cfg.Logs.Level).Warn("Unknown log level, defaulting to info")
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	if cfg.Logs.EnableJSONOutput {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
