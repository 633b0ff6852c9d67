// main package for the tts-api service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/naija-speech/tts-api/internal/assets"
	"github.com/naija-speech/tts-api/internal/audiostore"
	"github.com/naija-speech/tts-api/internal/config"
	"github.com/naija-speech/tts-api/internal/core"
	"github.com/naija-speech/tts-api/internal/objectstore"
	"github.com/naija-speech/tts-api/internal/server"
	"github.com/naija-speech/tts-api/internal/tts"
)

const logFileName = "tts-api.log"

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, logFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// A .env file is optional; deployments usually set the environment
	// directly.
	_ = godotenv.Load()

	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, finalLog)
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	engine := buildEngine(cfg, log)

	store, err := audiostore.New(cfg.Audio.Dir)
	if err != nil {
		return fmt.Errorf("failed to create audio store: %w", err)
	}

	mirror, remote, natsConn, err := buildMirror(cfg, log)
	if err != nil {
		return err
	}

	if natsConn != nil {
		defer natsConn.Close()
	}

	janitor := audiostore.NewJanitor(
		store,
		hoursToDuration(cfg.Audio.MaxAgeHours),
		hoursToDuration(cfg.Audio.CleanupIntervalHours),
		log,
	)
	if remote != nil {
		janitor = janitor.WithRemote(remote)
	}

	go janitor.Run(ctx)

	// Warm up in the background so the server can answer health checks
	// with model_loaded=false while the model assets download.
	go func() {
		warmupErr := engine.Warmup(ctx)
		if warmupErr != nil {
			log.Error("Engine warmup failed: %v", warmupErr)
		}
	}()

	log.System("TTS API %s starting, engine kind: %s", server.Version, cfg.Engine.Kind)

	srv := server.New(cfg, log, engine, store, janitor, mirror)

	err = srv.Run(ctx)
	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildEngine selects the synthesis engine from configuration. Unknown
// kinds fall back to the runner engine.
func buildEngine(cfg *config.Config, log *logger.Logger) core.Synthesizer {
	switch cfg.Engine.Kind {
	case config.EngineMock:
		return tts.NewMockEngine(cfg.Synthesis.SampleRate)
	case config.EngineProcess:
		return tts.NewProcessEngine(cfg, log)
	case config.EngineRunner:
		return tts.NewRunnerEngine(cfg, assets.New(cfg.Model, log), log)
	default:
		log.Warn("Unknown engine kind '%s', using runner", cfg.Engine.Kind)

		return tts.NewRunnerEngine(cfg, assets.New(cfg.Model, log), log)
	}
}

// buildMirror connects the optional NATS JetStream mirror, returning the
// mirror, the underlying object store for janitor follow-through, and the
// connection. A disabled mirror returns nils without error.
func buildMirror(
	cfg *config.Config,
	log *logger.Logger,
) (*audiostore.Mirror, *objectstore.NatsObjectStore, *nats.Conn, error) {
	if !cfg.NATS.Enabled {
		return nil, nil, nil, nil
	}

	natsConn, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf(
			"failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	jetstreamContext, err := natsConn.JetStream()
	if err != nil {
		natsConn.Close()

		return nil, nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	bucket := cfg.NATS.AudioBucket
	if bucket == "" {
		bucket = "tts-audio"
	}

	remote, err := objectstore.New(jetstreamContext, bucket)
	if err != nil {
		natsConn.Close()

		return nil, nil, nil, fmt.Errorf("failed to create object store: %w", err)
	}

	log.Info("Audio mirror enabled, bucket: %s", bucket)

	mirror := audiostore.NewMirror(remote, natsConn, cfg.NATS.AudioCreatedSubject, log)

	return mirror, remote, natsConn, nil
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
