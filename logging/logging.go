// Package logging owns the process-wide logrus logger.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

type appPrefixHook struct {
	prefix string
}

func (h *appPrefixHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *appPrefixHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.prefix + entry.Message
	return nil
}

// Init configures Logger for stdout with the given level name. An empty or
// unknown level falls back to info.
func Init(appName, level string) {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	name := strings.ToLower(strings.TrimSpace(level))
	if name == "" {
		name = "info"
	}
	parsed, err := logrus.ParseLevel(name)
	if err != nil {
		Logger.Warnf("invalid log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)

	if appName != "" {
		Logger.AddHook(&appPrefixHook{prefix: "[" + appName + "] "})
	}
}

// OrDefault returns l, or the shared Logger when l is nil.
func OrDefault(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Logger
	}
	return l
}
