// Package config_test tests the configuration loading for the tts-api service.
package config_test

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-speech/tts-api/internal/config"
)

func TestUnmarshalConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[server]
host = "127.0.0.1"
port = 9000
cors_allow_origins = ["https://example.com"]

[engine]
kind = "runner"
runner_url = "http://localhost:8880"
timeout_seconds = 180
max_in_flight = 4

[model]
dir = "/var/lib/tts/models"
config_url = "https://example.com/wavtokenizer.yaml"
checkpoint_url = "https://example.com/wavtokenizer.ckpt"

[synthesis]
max_text_length = 500
temperature = 0.2
repetition_penalty = 1.2
max_length = 2000
sample_rate = 24000

[audio]
dir = "/tmp/tts-audio"
cleanup_interval_hours = 2.0
max_age_hours = 0.5

[nats]
enabled = true
url = "nats://127.0.0.1:4222"
audio_bucket = "TTS_AUDIO"
audio_created_subject = "tts.audio.created"

[paths]
base_logs_dir = "/var/log/tts-api"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, config.EngineRunner, cfg.Engine.Kind)
	assert.Equal(t, "http://localhost:8880", cfg.Engine.RunnerURL)
	assert.Equal(t, 180, cfg.Engine.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Engine.MaxInFlight)
	assert.Equal(t, "/var/lib/tts/models", cfg.Model.Dir)
	assert.Equal(t, 500, cfg.Synthesis.MaxTextLength)
	assert.InEpsilon(t, 0.2, cfg.Synthesis.Temperature, 0.001)
	assert.Equal(t, "/tmp/tts-audio", cfg.Audio.Dir)
	assert.InEpsilon(t, 2.0, cfg.Audio.CleanupIntervalHours, 0.001)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "TTS_AUDIO", cfg.NATS.AudioBucket)
	assert.Equal(t, "/var/log/tts-api", cfg.Paths.BaseLogsDir)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg config.Config

	cfg.ApplyDefaults()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, config.EngineRunner, cfg.Engine.Kind)
	assert.Equal(t, 1000, cfg.Synthesis.MaxTextLength)
	assert.InEpsilon(t, 0.1, cfg.Synthesis.Temperature, 0.001)
	assert.InEpsilon(t, 1.1, cfg.Synthesis.RepetitionPenalty, 0.001)
	assert.Equal(t, 4000, cfg.Synthesis.MaxLength)
	assert.Equal(t, 24000, cfg.Synthesis.SampleRate)
	assert.InEpsilon(t, 1.0, cfg.Audio.CleanupIntervalHours, 0.001)
	assert.NotEmpty(t, cfg.Audio.Dir)
	assert.Equal(t, "wavtokenizer_large_speech_320_24k.ckpt", cfg.Model.CheckpointFile)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvPort, "10000")
	t.Setenv(config.EnvHost, "0.0.0.0")
	t.Setenv(config.EnvModelConfigURL, "https://hf.example/wavtokenizer.yaml")
	t.Setenv(config.EnvModelCheckpointURL, "https://hf.example/wavtokenizer.ckpt")
	t.Setenv(config.EnvCleanupIntervalHours, "6")
	t.Setenv(config.EnvRunnerURL, "http://runner:8880")
	t.Setenv(config.EnvNATSURL, "nats://nats:4222")

	var cfg config.Config

	cfg.ApplyDefaults()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 10000, cfg.Server.Port)
	assert.Equal(t, "https://hf.example/wavtokenizer.yaml", cfg.Model.ConfigURL)
	assert.Equal(t, "https://hf.example/wavtokenizer.ckpt", cfg.Model.CheckpointURL)
	assert.InEpsilon(t, 6.0, cfg.Audio.CleanupIntervalHours, 0.001)
	assert.Equal(t, "http://runner:8880", cfg.Engine.RunnerURL)
	assert.True(t, cfg.NATS.Enabled, "setting NATS_URL should enable the mirror")
	assert.Equal(t, "nats://nats:4222", cfg.NATS.URL)
}

func TestApplyEnvOverridesIgnoresMalformedValues(t *testing.T) {
	t.Setenv(config.EnvPort, "not-a-port")
	t.Setenv(config.EnvCleanupIntervalHours, "soon")

	var cfg config.Config

	cfg.ApplyDefaults()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.InEpsilon(t, 1.0, cfg.Audio.CleanupIntervalHours, 0.001)
}

func TestApplyEnvOverridesIgnoresNonPositiveValues(t *testing.T) {
	t.Setenv(config.EnvPort, "0")
	t.Setenv(config.EnvCleanupIntervalHours, "0")

	var cfg config.Config

	cfg.ApplyDefaults()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.InEpsilon(t, 1.0, cfg.Audio.CleanupIntervalHours, 0.001)

	t.Setenv(config.EnvCleanupIntervalHours, "-2")
	cfg.ApplyEnvOverrides()
	assert.InEpsilon(t, 1.0, cfg.Audio.CleanupIntervalHours, 0.001)
}
