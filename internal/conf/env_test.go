package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverlayAppliesKnownVars(t *testing.T) {
	t.Setenv("FEATHER_STREAM_URL", "rtsp://env-host/stream")
	t.Setenv("FEATHER_MIN_CONFIDENCE", "0.62")
	t.Setenv("FEATHER_HTTP_PORT", "9090")

	st := NewStore(Default(), "", "")
	st.ApplyEnvOverlay()

	got := st.Get()
	assert.Equal(t, "rtsp://env-host/stream", got.StreamURL)
	assert.InDelta(t, 0.62, got.MinConfidence, 1e-9)
	assert.Equal(t, 9090, got.HTTPPort)
}

func TestApplyEnvOverlayIgnoresUnsetVars(t *testing.T) {
	st := NewStore(Default(), "", "")
	before := st.Get()

	st.ApplyEnvOverlay()

	require.Equal(t, before, st.Get())
}

func TestApplyEnvOverlayNeverRequestsRestart(t *testing.T) {
	t.Setenv("FEATHER_STREAM_URL", "rtsp://env-host/stream")

	st := NewStore(Default(), "", "")
	st.ApplyEnvOverlay()

	assert.False(t, st.ConsumeRestart(), "env overlay must not trigger the in-process restart signal at startup")
}

func TestCoerceEnvValueFallsBackToStringOnParseFailure(t *testing.T) {
	assert.Equal(t, "not-a-number", coerceEnvValue("http_port", "not-a-number"))
	assert.Equal(t, 42, coerceEnvValue("http_port", "42"))
	assert.Equal(t, "not-a-float", coerceEnvValue("min_confidence", "not-a-float"))
}
