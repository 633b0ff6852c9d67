// main package for the tts-client command-line tool
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Flag descriptions.
const (
	flagTextDesc   = "Text to convert to speech"
	flagOutputDesc = "Output file path (.wav)"
	flagVoiceDesc  = "Voice to synthesize with (empty uses the server default)"
	flagLangDesc   = "Language of the text (empty uses the server default)"
	flagServerDesc = "Base URL of the TTS API"
	flagHealthDesc = "Check TTS API health and exit"
)

// Flag names.
const (
	flagText   = "text"
	flagOutput = "output"
	flagVoice  = "voice"
	flagLang   = "lang"
	flagServer = "server"
	flagHealth = "health"
)

// Defaults.
const (
	defaultServerURL  = "http://localhost:8000"
	defaultOutputFile = "output.wav"
	requestTimeout    = 180 * time.Second
	healthTimeout     = 10 * time.Second
	outputPermissions = 0o600
)

// Static errors.
var (
	errTextRequired  = errors.New("--text must be provided")
	errServerError   = errors.New("server returned an error")
	errEmptyAudio    = errors.New("server returned no audio data")
	errNotHealthy    = errors.New("tts api is not healthy")
	errModelNotReady = errors.New("tts api is healthy but the model is still loading")
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text   string
	output string
	voice  string
	lang   string
	server string
	health bool
}

// synthesisRequest mirrors the API request body.
type synthesisRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Voice    string `json:"voice,omitempty"`
}

// synthesisResponse carries the fields the client consumes.
type synthesisResponse struct {
	AudioBase64 string  `json:"audio_base64"`
	Voice       string  `json:"voice"`
	Language    string  `json:"language"`
	Duration    float64 `json:"duration"`
}

// errorResponse mirrors the API error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

// healthResponse mirrors the API health body.
type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	if flags.health {
		return checkHealth(flags.server)
	}

	err := validateFlags(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = defaultOutputFile
	}

	return synthesize(flags, outputPath)
}

// validateFlags checks that a synthesis invocation has the input it needs.
func validateFlags(flags appFlags) error {
	if flags.text == "" {
		return errTextRequired
	}

	return nil
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.lang, flagLang, "", flagLangDesc)
	flag.StringVar(&flags.server, flagServer, defaultServerURL, flagServerDesc)
	flag.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	flag.Parse()

	return flags
}

// checkHealth queries the health endpoint and reports whether the model
// is loaded.
func checkHealth(serverURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, serverURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %s", errNotHealthy, resp.Status)
	}

	var health healthResponse

	err = json.NewDecoder(resp.Body).Decode(&health)
	if err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}

	if !health.ModelLoaded {
		return errModelNotReady
	}

	fmt.Println("TTS API is healthy and the model is loaded")

	return nil
}

// synthesize posts the request and writes the decoded WAV to outputPath.
func synthesize(flags appFlags, outputPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	payload, err := json.Marshal(synthesisRequest{
		Text:     flags.text,
		Language: flags.lang,
		Voice:    flags.voice,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, flags.server+"/tts", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create synthesis request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", errServerError, serverDetail(body, resp.Status))
	}

	return writeAudio(body, outputPath)
}

// serverDetail extracts the API error detail, falling back to the HTTP
// status when the body is not the expected shape.
func serverDetail(body []byte, status string) string {
	var apiErr errorResponse

	err := json.Unmarshal(body, &apiErr)
	if err != nil || apiErr.Detail == "" {
		return status
	}

	return apiErr.Detail
}

// writeAudio decodes the base64 WAV payload and writes it to disk.
func writeAudio(body []byte, outputPath string) error {
	var result synthesisResponse

	err := json.Unmarshal(body, &result)
	if err != nil {
		return fmt.Errorf("failed to decode synthesis response: %w", err)
	}

	if result.AudioBase64 == "" {
		return errEmptyAudio
	}

	wavData, err := base64.StdEncoding.DecodeString(result.AudioBase64)
	if err != nil {
		return fmt.Errorf("failed to decode audio payload: %w", err)
	}

	err = os.WriteFile(outputPath, wavData, outputPermissions)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	fmt.Printf("Generated %s (%s, %s, %.2fs)\n",
		outputPath, result.Voice, result.Language, result.Duration)

	return nil
}
