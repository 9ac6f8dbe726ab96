package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/snappy-loop/veritas/internal/config"
	"github.com/snappy-loop/veritas/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupLogging("debug", &bytes.Buffer{})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogging("nonsense", &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestFactCheckAgent_SearchNotConfigured(t *testing.T) {
	cfg := &config.Config{SearchProvider: search.ProviderGoogleCSE, MaxSearchResults: 5}

	agent, err := FactCheckAgent(context.Background(), cfg)

	require.ErrorIs(t, err, search.ErrNotConfigured)
	assert.Nil(t, agent)
}

func TestSummaryAgent(t *testing.T) {
	assert.Nil(t, SummaryAgent(&config.Config{}))
	assert.NotNil(t, SummaryAgent(&config.Config{GroqAPIKey: "k", GroqModel: "m"}))
}

func TestImageDetectAgent(t *testing.T) {
	ctx := context.Background()

	agent, closer, err := ImageDetectAgent(ctx, &config.Config{VisionProvider: VisionNvidia})
	require.NoError(t, err)
	assert.Nil(t, agent)
	assert.NoError(t, closer.Close())

	agent, closer, err = ImageDetectAgent(ctx, &config.Config{VisionProvider: VisionNvidia, NvidiaAPIKey: "k", NvidiaVisionModel: "m"})
	require.NoError(t, err)
	assert.NotNil(t, agent)
	assert.NoError(t, closer.Close())

	_, _, err = ImageDetectAgent(ctx, &config.Config{VisionProvider: "other"})
	assert.Error(t, err)
}
