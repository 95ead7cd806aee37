package config

import (
	"context"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/sirupsen/logrus"

	"smartmatch/logging"
)

const (
	LDConnectionTimeout = 5 * time.Second

	FlagTransitQuestion = "transit_question_enabled"
)

type boolVariator interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
}

// Flags answers feature switches from LaunchDarkly when configured, and from
// static config otherwise.
type Flags struct {
	client  boolVariator
	closer  func() error
	context ldcontext.Context
	transit bool
	log     logrus.FieldLogger
}

// NewFlags connects to LaunchDarkly if an SDK key is configured. A client that
// fails to initialise in time is kept: it serves fallbacks until it catches up.
func NewFlags(cfg *Config, log logrus.FieldLogger) *Flags {
	f := &Flags{
		transit: cfg.TransitQuestion,
		log:     logging.OrDefault(log),
	}
	if cfg.LDSDKKey == "" {
		return f
	}

	client, err := ld.MakeClient(cfg.LDSDKKey, LDConnectionTimeout)
	if err != nil {
		f.log.WithError(err).Warn("LaunchDarkly client not initialised, using static flags until it is")
	}
	if client == nil {
		return f
	}
	f.client = client
	f.closer = client.Close
	f.context = ldcontext.NewWithKind(ldcontext.Kind(cfg.LDContextKind), cfg.LDContextKey)
	return f
}

// TransitQuestionEnabled reports whether the wizard asks about transit.
func (f *Flags) TransitQuestionEnabled(context.Context) bool {
	if f.client == nil {
		return f.transit
	}
	v, err := f.client.BoolVariation(FlagTransitQuestion, f.context, f.transit)
	if err != nil {
		f.log.WithError(err).WithField("flag", FlagTransitQuestion).Warn("flag evaluation failed")
		return f.transit
	}
	return v
}

func (f *Flags) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer()
}
