package telemetry_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/katalvlaran/meridian/telemetry"
	"github.com/stretchr/testify/require"
)

func TestLoggerFormatsTickPrefixAndKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := telemetry.NewLogger(&buf)

	log.Info(42, "status", "vertices", 10, "edges", 3)
	require.NoError(t, log.Sync())

	out := buf.String()
	require.Contains(t, out, "[TICK 42] status")
	require.Contains(t, out, "vertices")
	require.Contains(t, out, "10")
	require.True(t, strings.Contains(out, "edges"))
}

func TestLoggerZeroTick(t *testing.T) {
	var buf bytes.Buffer
	log := telemetry.NewLogger(&buf)

	log.Warn(0, "starting")
	require.NoError(t, log.Sync())

	require.Contains(t, buf.String(), "[TICK 0] starting")
}
