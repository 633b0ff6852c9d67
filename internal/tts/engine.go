package tts

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/book-expert/logger"

	"github.com/naija-speech/tts-api/internal/config"
	"github.com/naija-speech/tts-api/internal/core"
	"github.com/naija-speech/tts-api/internal/tts/text"
)

// WarmupHealthTimeout bounds the runner health probe during warmup.
const WarmupHealthTimeout = 10 * time.Second

// AssetFetcher downloads the model assets the runner needs before it can
// load its checkpoint. Ensure is idempotent: assets already on disk are
// left alone.
type AssetFetcher interface {
	Ensure(ctx context.Context) error
}

// RunnerEngine implements core.Synthesizer by delegating synthesis to the
// standalone YarnGPT inference runner over HTTP. It owns the process-wide
// "model loaded" state and bounds the number of in-flight synthesis calls
// so a burst of requests cannot pile up on the GPU.
type RunnerEngine struct {
	client  *RunnerClient
	fetcher AssetFetcher
	cfg     *config.Config
	log     *logger.Logger
	ready   atomic.Bool
	slots   chan struct{}
}

// NewRunnerEngine creates a runner-backed engine from the service
// configuration. The fetcher may be nil when model assets are managed
// outside this process.
func NewRunnerEngine(cfg *config.Config, fetcher AssetFetcher, log *logger.Logger) *RunnerEngine {
	timeout := time.Duration(cfg.Engine.TimeoutSeconds) * time.Second
	client := NewRunnerClient(cfg.Engine.RunnerURL, timeout)

	return newRunnerEngineWithClient(cfg, fetcher, client, log)
}

// NewRunnerEngineWithClient creates a runner-backed engine with a custom
// client. This constructor is primarily for testing, allowing injection of
// clients pointed at httptest servers.
func NewRunnerEngineWithClient(
	cfg *config.Config,
	fetcher AssetFetcher,
	client *RunnerClient,
	log *logger.Logger,
) *RunnerEngine {
	return newRunnerEngineWithClient(cfg, fetcher, client, log)
}

func newRunnerEngineWithClient(
	cfg *config.Config,
	fetcher AssetFetcher,
	client *RunnerClient,
	log *logger.Logger,
) *RunnerEngine {
	maxInFlight := cfg.Engine.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 1
	}

	return &RunnerEngine{
		client:  client,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log,
		slots:   make(chan struct{}, maxInFlight),
	}
}

// Ready reports whether warmup has completed successfully.
func (e *RunnerEngine) Ready() bool {
	return e.ready.Load()
}

// Warmup makes the engine serviceable: it ensures the model assets exist on
// disk, then probes the runner health endpoint. It is intended to run in a
// background goroutine at startup so the HTTP server can come up and report
// model_loaded=false in the meantime.
func (e *RunnerEngine) Warmup(ctx context.Context) error {
	if e.fetcher != nil {
		err := e.fetcher.Ensure(ctx)
		if err != nil {
			return fmt.Errorf("failed to ensure model assets: %w", err)
		}
	}

	healthCtx, cancel := context.WithTimeout(ctx, WarmupHealthTimeout)
	defer cancel()

	err := e.client.HealthCheck(healthCtx)
	if err != nil {
		return fmt.Errorf("runner health check failed: %w", err)
	}

	e.ready.Store(true)
	e.log.Info("Runner engine ready at %s", e.cfg.Engine.RunnerURL)

	return nil
}

// Synthesize converts the job into runner parameters and returns the
// generated audio. Calls block while all in-flight slots are taken, which
// keeps at most max_in_flight synthesis requests on the runner at once.
func (e *RunnerEngine) Synthesize(ctx context.Context, job core.SynthesisJob) (core.Audio, error) {
	if !e.ready.Load() {
		return core.Audio{}, core.ErrEngineNotReady
	}

	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return core.Audio{}, fmt.Errorf("waiting for synthesis slot: %w", ctx.Err())
	}

	req := RunnerRequest{
		Text:              job.Text,
		Language:          job.Language,
		SpeakerName:       job.Voice,
		Temperature:       e.cfg.Synthesis.Temperature,
		RepetitionPenalty: e.cfg.Synthesis.RepetitionPenalty,
		MaxLength:         e.cfg.Synthesis.MaxLength,
	}

	wavData, err := e.client.GenerateSpeech(ctx, req)
	if err != nil {
		return core.Audio{}, fmt.Errorf("failed to generate speech: %w", err)
	}

	return buildAudio(wavData, job.Text, e.cfg.Synthesis.SampleRate), nil
}

// buildAudio assembles the Audio result, preferring the real container
// duration and sample rate over estimates.
func buildAudio(wavData []byte, sourceText string, fallbackRate int) core.Audio {
	audio := core.Audio{
		WAV:        wavData,
		Duration:   0,
		SampleRate: fallbackRate,
	}

	duration, err := AudioDuration(wavData)
	if err == nil {
		audio.Duration = duration
	} else {
		audio.Duration = estimateFallback(sourceText)
	}

	rate, err := SampleRate(wavData)
	if err == nil {
		audio.SampleRate = rate
	}

	return audio
}

func estimateFallback(sourceText string) float64 {
	return text.EstimateDuration(sourceText)
}
