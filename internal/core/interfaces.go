// Package core defines the core business logic and interfaces for the TTS API.
package core

import "context"

// SynthesisJob holds the validated parameters for a single synthesis call.
// Text is expected to be normalized before it reaches a Synthesizer.
type SynthesisJob struct {
	Text     string
	Language string
	Voice    string
}

// Audio is the result of a synthesis call. WAV holds the complete audio
// container bytes; Duration is in seconds.
type Audio struct {
	WAV        []byte
	Duration   float64
	SampleRate int
}

// Synthesizer defines the interface for a text-to-speech engine.
//
// Ready reports whether the underlying model is loaded and able to serve
// requests; Synthesize must fail with ErrEngineNotReady while it is false.
// Warmup performs whatever one-time initialization the engine needs (asset
// download, health probe) and flips Ready on success.
type Synthesizer interface {
	Synthesize(ctx context.Context, job SynthesisJob) (Audio, error)
	Ready() bool
	Warmup(ctx context.Context) error
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
