package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetObserver(t *testing.T) {
	old := *Logger()
	defer Set(old)

	var buf bytes.Buffer
	Set(zerolog.New(&buf))

	// Chained directly off Logger(): the accessor must hand back something
	// the zerolog event methods can be called on.
	Logger().Info().Str("stage", "build").Msg("lowered circuit")
	require.Contains(t, buf.String(), `"stage":"build"`)
	require.Contains(t, buf.String(), "lowered circuit")
}

func TestDisable(t *testing.T) {
	old := *Logger()
	defer Set(old)

	var buf bytes.Buffer
	Set(zerolog.New(&buf))
	Disable()
	Logger().Error().Msg("dropped")
	require.Empty(t, buf.String())
}
