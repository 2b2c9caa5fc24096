package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(" INFO "))
	require.Equal(t, zerolog.Disabled, ParseLevel(""))
	require.Equal(t, zerolog.Disabled, ParseLevel("verbose"))
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.WarnLevel)
	log.Info().Msg("dropped")
	require.Equal(t, 0, buf.Len())
	log.Warn().Msg("kept")
	require.Contains(t, buf.String(), "kept")
}

func TestDefaultIsSilentWithoutEnv(t *testing.T) {
	t.Setenv(LevelEnvVar, "")
	require.Equal(t, zerolog.Disabled, Default().GetLevel())
	t.Setenv(LevelEnvVar, "debug")
	require.Equal(t, zerolog.DebugLevel, Default().GetLevel())
}
