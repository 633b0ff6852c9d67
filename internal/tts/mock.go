package tts

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/naija-speech/tts-api/internal/core"
)

// Mock audio parameters. The mock produces two seconds of a 440 Hz tone,
// mono 16-bit PCM, which is enough for clients to exercise the full
// request path without a model.
const (
	mockToneFrequency = 440.0
	mockToneSeconds   = 2.0
	mockToneAmplitude = 0.3
	mockBitDepth      = 16
	mockChannels      = 1
	pcm16Scale        = 32767
	wavAudioFormatPCM = 1
)

// MockEngine implements core.Synthesizer with deterministic sine-wave audio.
// It backs the service's testing mode and most of the test suite.
type MockEngine struct {
	sampleRate int
	ready      atomic.Bool
}

// NewMockEngine creates a mock engine generating WAV data at the given
// sample rate.
func NewMockEngine(sampleRate int) *MockEngine {
	return &MockEngine{sampleRate: sampleRate}
}

// Ready reports whether Warmup has run.
func (e *MockEngine) Ready() bool {
	return e.ready.Load()
}

// Warmup marks the mock serviceable; there is nothing to load.
func (e *MockEngine) Warmup(_ context.Context) error {
	e.ready.Store(true)

	return nil
}

// Synthesize returns a sine-wave WAV regardless of the input text. The
// reported duration comes from the generated container, matching the real
// engines.
func (e *MockEngine) Synthesize(_ context.Context, job core.SynthesisJob) (core.Audio, error) {
	if !e.ready.Load() {
		return core.Audio{}, core.ErrEngineNotReady
	}

	wavData, err := e.generateTone()
	if err != nil {
		return core.Audio{}, err
	}

	return buildAudio(wavData, job.Text, e.sampleRate), nil
}

// generateTone renders the sine wave through the WAV encoder. The encoder
// needs a WriteSeeker to patch up chunk sizes, so it writes to a temp file
// that is read back and removed.
func (e *MockEngine) generateTone() ([]byte, error) {
	sampleCount := int(float64(e.sampleRate) * mockToneSeconds)
	samples := make([]int, sampleCount)

	for i := range samples {
		t := float64(i) / float64(e.sampleRate)
		value := math.Sin(2*math.Pi*mockToneFrequency*t) * mockToneAmplitude
		samples[i] = int(value * pcm16Scale)
	}

	tempFile, err := os.CreateTemp("", "tts-mock-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for mock audio: %w", err)
	}

	defer os.Remove(tempFile.Name())

	encoder := wav.NewEncoder(
		tempFile, e.sampleRate, mockBitDepth, mockChannels, wavAudioFormatPCM)

	buffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: mockChannels,
			SampleRate:  e.sampleRate,
		},
		Data:           samples,
		SourceBitDepth: mockBitDepth,
	}

	err = encoder.Write(buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mock audio: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize mock audio: %w", err)
	}

	err = tempFile.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to close mock audio file: %w", err)
	}

	wavData, err := os.ReadFile(tempFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read mock audio: %w", err)
	}

	return wavData, nil
}
