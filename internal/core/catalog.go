package core

import (
	"errors"
	"fmt"
	"strings"
)

// Static errors for request validation.
var (
	// ErrEngineNotReady indicates that the synthesis model is not yet loaded.
	ErrEngineNotReady = errors.New("speech model is not loaded yet")
	// ErrUnsupportedLanguage indicates that the requested language is not recognized.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrUnsupportedVoice indicates that the requested voice is not recognized.
	ErrUnsupportedVoice = errors.New("unsupported voice")
)

// Defaults for requests that omit optional fields.
const (
	DefaultVoice    = "idera"
	DefaultLanguage = "english"
)

// FemaleVoices lists the female voice personas the model was trained on.
var FemaleVoices = []string{"zainab", "idera", "regina", "chinenye", "joke", "remi"}

// MaleVoices lists the male voice personas the model was trained on.
var MaleVoices = []string{"jude", "tayo", "umar", "osagie", "onye", "emma"}

// Languages lists the languages the model can synthesize.
var Languages = []string{"english", "yoruba", "igbo", "hausa"}

// AllVoices returns every known voice as a flat list, female first.
func AllVoices() []string {
	voices := make([]string, 0, len(FemaleVoices)+len(MaleVoices))
	voices = append(voices, FemaleVoices...)
	voices = append(voices, MaleVoices...)

	return voices
}

// ValidateLanguage checks the language against the supported set.
// The returned error names both the rejected value and the valid options
// so it can be surfaced to API callers verbatim.
func ValidateLanguage(language string) error {
	for _, known := range Languages {
		if language == known {
			return nil
		}
	}

	return fmt.Errorf("%w: %q, must be one of [%s]",
		ErrUnsupportedLanguage, language, strings.Join(Languages, ", "))
}

// ValidateVoice checks the voice against the supported set.
func ValidateVoice(voice string) error {
	for _, known := range AllVoices() {
		if voice == known {
			return nil
		}
	}

	return fmt.Errorf("%w: %q, must be one of [%s]",
		ErrUnsupportedVoice, voice, strings.Join(AllVoices(), ", "))
}
