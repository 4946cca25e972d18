package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const ServiceName = "carbontrack"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests and tools that never call Init still get a usable logger.
func init() {
	Init("info", "text")
}

// Init configures the global logger. format is "json" or "text".
func Init(level, format string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Log = logger.WithFields(logrus.Fields{"service": ServiceName})
}
