// Package text provides input validation and text preprocessing for the TTS API.
//
// This package implements the request-side text handling that was previously
// done by Python utilities, following Go coding standards and design
// principles for explicit behavior and maintainable code.
package text

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits and rates.
const (
	// DefaultMaxLength is the maximum accepted text length in characters.
	DefaultMaxLength = 1000
	// WordsPerMinute is the speaking rate used for duration estimation.
	WordsPerMinute = 150
	// secondsPerMinute converts the word rate into seconds.
	secondsPerMinute = 60
	// durationPrecision rounds estimates to two decimal places.
	durationPrecision = 100
)

// forbiddenChars are rejected outright; they tend to carry markup or
// template fragments the model reads aloud as garbage.
const forbiddenChars = "<>{}"

// Regex patterns for text preprocessing.
const (
	whitespaceRegexPattern = `\s+`
)

// Static errors.
var (
	// ErrTextEmpty indicates the input was empty or whitespace only.
	ErrTextEmpty = errors.New("text cannot be empty")
	// ErrTextTooLong indicates the input exceeded the configured maximum.
	ErrTextTooLong = errors.New("text too long")
	// ErrTextInvalidChars indicates the input contained forbidden characters.
	ErrTextInvalidChars = errors.New("text contains invalid characters")
)

// Validator performs pure, synchronous validation of TTS input text.
type Validator struct {
	maxLength         int
	whitespacePattern *regexp.Regexp
}

// NewValidator creates a validator with the given maximum text length.
// A non-positive maxLength falls back to DefaultMaxLength.
func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	return &Validator{
		maxLength:         maxLength,
		whitespacePattern: regexp.MustCompile(whitespaceRegexPattern),
	}
}

// Validate checks the raw input text against the request contract:
// non-empty after trimming, within the length limit, and free of
// forbidden characters. The limit counts characters, not bytes: Yoruba,
// Igbo and Hausa text is full of multi-byte diacritics.
func (v *Validator) Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrTextEmpty
	}

	if utf8.RuneCountInString(trimmed) > v.maxLength {
		return fmt.Errorf("%w: maximum length is %d characters", ErrTextTooLong, v.maxLength)
	}

	if strings.ContainsAny(text, forbiddenChars) {
		return ErrTextInvalidChars
	}

	return nil
}

// Normalize collapses runs of whitespace into single spaces and trims the
// result, so the engine sees one clean line of text.
func (v *Validator) Normalize(text string) string {
	return strings.TrimSpace(v.whitespacePattern.ReplaceAllString(text, " "))
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateDuration estimates speech duration in seconds from the word count
// at a fixed speaking rate, rounded to two decimal places. It is the
// fallback when the generated WAV cannot be parsed for its real duration.
func EstimateDuration(text string) float64 {
	words := WordCount(text)
	if words == 0 {
		return 0
	}

	seconds := float64(words) / WordsPerMinute * secondsPerMinute

	return math.Round(seconds*durationPrecision) / durationPrecision
}
