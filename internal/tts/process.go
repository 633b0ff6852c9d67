package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"

	"github.com/book-expert/logger"

	"github.com/naija-speech/tts-api/internal/config"
	"github.com/naija-speech/tts-api/internal/core"
)

// defaultBinaryName is the yarngpt CLI looked up on PATH when no explicit
// binary path is configured.
const defaultBinaryName = "yarngpt"

// ErrBinaryNotFound indicates the yarngpt binary could not be located.
var ErrBinaryNotFound = errors.New("yarngpt binary not found")

// ProcessEngine implements core.Synthesizer by invoking a local yarngpt
// binary for each request. It is the fallback for deployments that run the
// model in the same container instead of a separate runner service.
type ProcessEngine struct {
	binaryPath string
	cfg        *config.Config
	log        *logger.Logger
	ready      atomic.Bool
}

// NewProcessEngine creates a process-backed engine from the service
// configuration.
func NewProcessEngine(cfg *config.Config, log *logger.Logger) *ProcessEngine {
	binaryPath := cfg.Engine.BinaryPath
	if binaryPath == "" {
		binaryPath = defaultBinaryName
	}

	return &ProcessEngine{
		binaryPath: binaryPath,
		cfg:        cfg,
		log:        log,
	}
}

// Ready reports whether the binary has been located by Warmup.
func (e *ProcessEngine) Ready() bool {
	return e.ready.Load()
}

// Warmup resolves the binary on PATH and marks the engine serviceable.
func (e *ProcessEngine) Warmup(_ context.Context) error {
	resolved, err := exec.LookPath(e.binaryPath)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrBinaryNotFound, e.binaryPath, err)
	}

	e.binaryPath = resolved
	e.ready.Store(true)
	e.log.Info("Process engine ready, binary: %s", resolved)

	return nil
}

// Synthesize runs the binary with the job parameters, exporting the audio
// to a temp file which is read back and removed.
func (e *ProcessEngine) Synthesize(ctx context.Context, job core.SynthesisJob) (core.Audio, error) {
	if !e.ready.Load() {
		return core.Audio{}, core.ErrEngineNotReady
	}

	tempFile, err := os.CreateTemp("", "tts-output-*.wav")
	if err != nil {
		return core.Audio{}, fmt.Errorf("failed to create temp file for tts output: %w", err)
	}

	defer func() {
		removeErr := os.Remove(tempFile.Name())
		if removeErr != nil {
			e.log.Warn("Failed to remove temp file '%s': %v", tempFile.Name(), removeErr)
		}
	}()

	closeErr := tempFile.Close()
	if closeErr != nil {
		return core.Audio{}, fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	args := []string{
		"--text", job.Text,
		"--lang", job.Language,
		"--voice", job.Voice,
		"--output", tempFile.Name(),
		"--temperature", strconv.FormatFloat(e.cfg.Synthesis.Temperature, 'f', 2, 64),
		"--repetition-penalty", strconv.FormatFloat(e.cfg.Synthesis.RepetitionPenalty, 'f', 2, 64),
		"--max-length", strconv.Itoa(e.cfg.Synthesis.MaxLength),
	}

	// #nosec G204 -- text, language and voice are validated at the API boundary
	cmd := exec.CommandContext(ctx, e.binaryPath, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return core.Audio{}, fmt.Errorf(
			"yarngpt binary execution failed: %w - output: %s", err, string(output))
	}

	wavData, err := os.ReadFile(tempFile.Name())
	if err != nil {
		return core.Audio{}, fmt.Errorf("failed to read audio data from temp file: %w", err)
	}

	return buildAudio(wavData, job.Text, e.cfg.Synthesis.SampleRate), nil
}
