// Package tts provides the speech synthesis engines for the TTS API.
//
// Three core.Synthesizer implementations live here: RunnerEngine talks to a
// standalone YarnGPT inference runner over HTTP, ProcessEngine shells out to
// a local yarngpt binary, and MockEngine produces deterministic test audio.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// API endpoints and paths on the YarnGPT runner.
const (
	apiGenerateSpeech = "/v1/generate/speech"
	apiHealth         = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypeWAV    = "audio/wav"
)

// Error messages.
const (
	errTextCannotBeEmpty      = "text cannot be empty"
	errUnexpectedContentType  = "unexpected content type: expected audio/wav, got %s"
	errReceivedEmptyAudio     = "received empty audio data"
	errFmtRunnerErrorWithCode = "runner error (%s): %s (code: %s)"
	errFmtRunnerNonOKStatus   = "runner returned non-OK status: %s, body: %s"
)

// RunnerClient is an HTTP client for the standalone YarnGPT inference runner.
// It encapsulates the HTTP configuration and provides methods for speech
// generation and health monitoring.
type RunnerClient struct {
	httpClient *http.Client
	baseURL    string
}

// RunnerRequest defines the JSON payload for a synthesis request to the runner.
type RunnerRequest struct {
	// Text contains the normalized input text to convert to speech.
	Text string `json:"text"`

	// Language is one of the supported language names (e.g. "english").
	Language string `json:"language"`

	// SpeakerName selects the voice persona (e.g. "idera").
	SpeakerName string `json:"speaker_name"`

	// Temperature controls randomness in generation.
	Temperature float64 `json:"temperature"`

	// RepetitionPenalty discourages the model from looping on tokens.
	RepetitionPenalty float64 `json:"repetition_penalty"`

	// MaxLength caps the number of generated audio tokens.
	MaxLength int `json:"max_length"`
}

// RunnerErrorResponse represents a structured error response from the runner.
type RunnerErrorResponse struct {
	// Detail contains a human-readable error description.
	Detail string `json:"detail"`

	// ErrorCode provides a machine-readable error classification.
	ErrorCode string `json:"error_code,omitempty"`
}

// NewRunnerClient creates and configures an HTTP client for the runner.
// The baseURL should include the protocol and port (e.g. "http://localhost:8880").
// The timeout applies to all HTTP requests made by this client.
func NewRunnerClient(baseURL string, timeout time.Duration) *RunnerClient {
	return &RunnerClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateSpeech sends a synthesis request and returns the raw WAV bytes.
// It validates input at the boundary, constructs the HTTP request according
// to the runner contract, and handles both success and error responses.
func (c *RunnerClient) GenerateSpeech(ctx context.Context, req RunnerRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, errors.New(errTextCannotBeEmpty)
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + apiGenerateSpeech

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeWAV)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to runner at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	contentType := resp.Header.Get(headerContentType)
	if contentType != contentTypeWAV {
		return nil, fmt.Errorf(errUnexpectedContentType, contentType)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, errors.New(errReceivedEmptyAudio)
	}

	return audioData, nil
}

// HealthCheck verifies that the runner is up and has its model loaded.
// It is performed before the engine reports itself ready so that callers
// fail fast with a clear diagnostic while the model is still loading.
func (c *RunnerClient) HealthCheck(ctx context.Context) error {
	url := c.baseURL + apiHealth

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(
			"health check failed for runner at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// runner. If structured parsing fails it falls back to the raw body so
// diagnostic information is preserved.
func (c *RunnerClient) parseErrorResponse(resp *http.Response) error {
	var errorResp RunnerErrorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil {
		return fmt.Errorf(errFmtRunnerErrorWithCode,
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		errFmtRunnerNonOKStatus,
		resp.Status,
		string(body),
	)
}
