package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"DATABASE_URL": "postgres://localhost/smartmatch"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.AvailabilityCacheTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.SearchPacing)
	assert.Equal(t, 500, cfg.PageSize)
	assert.False(t, cfg.TransitQuestion)
	assert.Equal(t, "service", cfg.LDContextKind)
	assert.Equal(t, AppName, cfg.LDContextKey)
	assert.Len(t, cfg.WizardStateSecret, 72)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DATABASE_URL":                "postgres://db/smartmatch",
		"APP_PORT":                    "9000",
		"AVAILABILITY_CACHE_TTL":      "2m",
		"SEARCH_PACING":               "0s",
		"LISTING_PAGE_SIZE":           "120",
		"SMARTMATCH_TRANSIT_QUESTION": "true",
		"WIZARD_STATE_SECRET":         "s3cret",
		"REDIS_URL":                   "localhost:6379",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, 2*time.Minute, cfg.AvailabilityCacheTTL)
	assert.Zero(t, cfg.SearchPacing)
	assert.Equal(t, 120, cfg.PageSize)
	assert.True(t, cfg.TransitQuestion)
	assert.Equal(t, []byte("s3cret"), cfg.WizardStateSecret)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
}

func TestFromEnvErrors(t *testing.T) {
	_, err := FromEnv(env(map[string]string{}))
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)

	_, err = FromEnv(env(map[string]string{"DATABASE_URL": "x", "SEARCH_PACING": "soon"}))
	assert.ErrorContains(t, err, "SEARCH_PACING")

	_, err = FromEnv(env(map[string]string{"DATABASE_URL": "x", "SEARCH_CANDIDATE_LIMIT": "many"}))
	assert.ErrorContains(t, err, "SEARCH_CANDIDATE_LIMIT")

	_, err = FromEnv(env(map[string]string{"DATABASE_URL": "x", "SMARTMATCH_TRANSIT_QUESTION": "perhaps"}))
	assert.ErrorContains(t, err, "SMARTMATCH_TRANSIT_QUESTION")
}

type fakeVariator struct {
	value bool
	err   error
	keys  []string
}

func (f *fakeVariator) BoolVariation(key string, _ ldcontext.Context, _ bool) (bool, error) {
	f.keys = append(f.keys, key)
	return f.value, f.err
}

func TestFlagsWithoutLaunchDarklyUseStaticValue(t *testing.T) {
	f := NewFlags(&Config{TransitQuestion: true}, nil)

	assert.True(t, f.TransitQuestionEnabled(context.Background()))
	assert.NoError(t, f.Close())
}

func TestFlagsPreferLaunchDarkly(t *testing.T) {
	logger, hook := test.NewNullLogger()
	variator := &fakeVariator{value: true}
	f := &Flags{client: variator, transit: false, log: logger}

	assert.True(t, f.TransitQuestionEnabled(context.Background()))
	assert.Equal(t, []string{FlagTransitQuestion}, variator.keys)

	variator.err = errors.New("flag not found")
	variator.value = false
	f.transit = true
	assert.True(t, f.TransitQuestionEnabled(context.Background()))
	assert.Equal(t, "flag evaluation failed", hook.LastEntry().Message)
}
