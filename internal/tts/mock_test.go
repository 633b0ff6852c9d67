package tts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-speech/tts-api/internal/core"
	"github.com/naija-speech/tts-api/internal/tts"
)

func TestMockEngine_NotReadyBeforeWarmup(t *testing.T) {
	t.Parallel()

	engine := tts.NewMockEngine(24000)

	_, err := engine.Synthesize(context.Background(), core.SynthesisJob{
		Text:     "Hello Nigeria",
		Language: "english",
		Voice:    "idera",
	})
	require.ErrorIs(t, err, core.ErrEngineNotReady)
}

func TestMockEngine_ProducesValidWAV(t *testing.T) {
	t.Parallel()

	engine := tts.NewMockEngine(24000)
	require.NoError(t, engine.Warmup(context.Background()))
	require.True(t, engine.Ready())

	audio, err := engine.Synthesize(context.Background(), core.SynthesisJob{
		Text:     "Hello Nigeria",
		Language: "english",
		Voice:    "idera",
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(audio.WAV), 44, "WAV should have at least a full header")
	assert.Equal(t, "RIFF", string(audio.WAV[0:4]))
	assert.Equal(t, "WAVE", string(audio.WAV[8:12]))

	assert.InDelta(t, 2.0, audio.Duration, 0.05)
	assert.Equal(t, 24000, audio.SampleRate)
}

func TestAudioDuration_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := tts.AudioDuration([]byte("not audio at all"))
	require.ErrorIs(t, err, tts.ErrNotWAV)

	_, err = tts.SampleRate([]byte("not audio at all"))
	require.ErrorIs(t, err, tts.ErrNotWAV)
}
