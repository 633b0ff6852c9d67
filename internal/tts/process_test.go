package tts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-speech/tts-api/internal/core"
	"github.com/naija-speech/tts-api/internal/tts"
)

// writeStubBinary creates an executable script that copies canned WAV
// bytes to the path given by --output, standing in for the yarngpt CLI.
func writeStubBinary(t *testing.T, wavData []byte) string {
	t.Helper()

	dir := t.TempDir()

	wavPath := filepath.Join(dir, "canned.wav")
	require.NoError(t, os.WriteFile(wavPath, wavData, 0o600))

	script := "#!/bin/sh\n" +
		"out=\"\"\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  if [ \"$1\" = \"--output\" ]; then out=\"$2\"; shift; fi\n" +
		"  shift\n" +
		"done\n" +
		"cp \"" + wavPath + "\" \"$out\"\n"

	binaryPath := filepath.Join(dir, "yarngpt-stub")
	require.NoError(t, os.WriteFile(binaryPath, []byte(script), 0o700))

	return binaryPath
}

func TestProcessEngine_NotReadyBeforeWarmup(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Engine.BinaryPath = "/does/not/exist"

	engine := tts.NewProcessEngine(cfg, newTestLogger(t))

	assert.False(t, engine.Ready())

	_, err := engine.Synthesize(context.Background(), core.SynthesisJob{
		Text:     "hello",
		Language: "english",
		Voice:    "idera",
	})
	require.ErrorIs(t, err, core.ErrEngineNotReady)
}

func TestProcessEngine_WarmupFailsWhenBinaryMissing(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Engine.BinaryPath = filepath.Join(t.TempDir(), "missing-binary")

	engine := tts.NewProcessEngine(cfg, newTestLogger(t))

	err := engine.Warmup(context.Background())
	require.ErrorIs(t, err, tts.ErrBinaryNotFound)
	assert.False(t, engine.Ready())
}

func TestProcessEngine_Synthesize(t *testing.T) {
	t.Parallel()

	wavData := mockWAV(t)

	cfg := newTestConfig()
	cfg.Engine.BinaryPath = writeStubBinary(t, wavData)

	engine := tts.NewProcessEngine(cfg, newTestLogger(t))
	require.NoError(t, engine.Warmup(context.Background()))
	assert.True(t, engine.Ready())

	audio, err := engine.Synthesize(context.Background(), core.SynthesisJob{
		Text:     "Hello Nigeria",
		Language: "english",
		Voice:    "idera",
	})
	require.NoError(t, err)

	assert.Equal(t, wavData, audio.WAV)
	assert.InDelta(t, 2.0, audio.Duration, 0.05)
	assert.Equal(t, 24000, audio.SampleRate)
}
