package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestAppPrefixHook(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.AddHook(&appPrefixHook{prefix: "[smartmatch] "})

	logger.Info("ready")

	assert.Equal(t, "[smartmatch] ready", hook.LastEntry().Message)
}

func TestInitLevel(t *testing.T) {
	defer func() {
		Logger = logrus.New()
	}()

	Logger = logrus.New()
	Init("", "debug")
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	Logger = logrus.New()
	var buf bytes.Buffer
	Init("", "chatty")
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	Logger.SetOutput(&buf)
	Logger.Info("after")
	assert.Contains(t, buf.String(), "after")
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, Logger, OrDefault(nil))

	other := logrus.New()
	assert.Same(t, other, OrDefault(other))
}
