package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainingOnGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := global
	global = zerolog.New(&buf)
	t.Cleanup(func() { global = prev })

	// L() must support chaining directly, no intermediate assignment.
	L().Info().Str("k", "v").Msg("chained")

	assert.Contains(t, buf.String(), `"chained"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestCtxReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	Ctx(ctx).Error().Msg("from context")

	assert.Contains(t, buf.String(), `"from context"`)
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := global
	global = zerolog.New(&buf)
	t.Cleanup(func() { global = prev })

	Ctx(context.Background()).Warn().Msg("fallback")

	assert.Contains(t, buf.String(), `"fallback"`)
}

func TestNewRespectsLevel(t *testing.T) {
	logger := New(Config{Level: "error", ServiceName: "relay"})
	require.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" Debug "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
}
