package tts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-audio/wav"
)

// ErrNotWAV indicates that the audio bytes are not a parseable WAV container.
var ErrNotWAV = errors.New("data is not a valid WAV container")

// AudioDuration returns the playback duration in seconds of a WAV container.
// The engines use it to report the real duration of generated audio instead
// of a word-rate estimate.
func AudioDuration(data []byte) (float64, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return 0, ErrNotWAV
	}

	duration, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read WAV duration: %w", err)
	}

	return duration.Seconds(), nil
}

// SampleRate returns the sample rate declared in a WAV container header.
func SampleRate(data []byte) (int, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))

	decoder.ReadInfo()

	if decoder.SampleRate == 0 {
		return 0, ErrNotWAV
	}

	return int(decoder.SampleRate), nil
}
