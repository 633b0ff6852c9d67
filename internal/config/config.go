// Package config provides the configuration structure for the tts-api service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Environment variable names honored as overrides after the TOML file is
// loaded. These match the deployment contract of the original service.
const (
	EnvPort                 = "PORT"
	EnvHost                 = "HOST"
	EnvModelConfigURL       = "MODEL_CONFIG_URL"
	EnvModelCheckpointURL   = "MODEL_CHECKPOINT_URL"
	EnvCleanupIntervalHours = "CLEANUP_INTERVAL_HOURS"
	EnvRunnerURL            = "YARNGPT_URL"
	EnvTempDir              = "TEMP_DIR"
	EnvNATSURL              = "NATS_URL"
)

// Engine kinds selectable via [engine].kind.
const (
	EngineRunner  = "runner"
	EngineProcess = "process"
	EngineMock    = "mock"
)

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host             string   `toml:"host"`
	Port             int      `toml:"port"`
	CORSAllowOrigins []string `toml:"cors_allow_origins"`
}

// EngineConfig selects and configures the synthesis engine.
type EngineConfig struct {
	Kind           string `toml:"kind"`
	RunnerURL      string `toml:"runner_url"`
	BinaryPath     string `toml:"binary_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxInFlight    int    `toml:"max_in_flight"`
}

// ModelConfig describes where the wavtokenizer assets live and where to
// fetch them from when they are missing.
type ModelConfig struct {
	Dir            string `toml:"dir"`
	ConfigFile     string `toml:"config_file"`
	CheckpointFile string `toml:"checkpoint_file"`
	ConfigURL      string `toml:"config_url"`
	CheckpointURL  string `toml:"checkpoint_url"`
}

// SynthesisConfig holds the generation parameters passed to the model.
type SynthesisConfig struct {
	MaxTextLength     int     `toml:"max_text_length"`
	Temperature       float64 `toml:"temperature"`
	RepetitionPenalty float64 `toml:"repetition_penalty"`
	MaxLength         int     `toml:"max_length"`
	SampleRate        int     `toml:"sample_rate"`
}

// AudioConfig controls the generated-artifact store and its janitor.
type AudioConfig struct {
	Dir                  string  `toml:"dir"`
	CleanupIntervalHours float64 `toml:"cleanup_interval_hours"`
	MaxAgeHours          float64 `toml:"max_age_hours"`
}

// NATSConfig configures the optional JetStream artifact mirror.
type NATSConfig struct {
	Enabled             bool   `toml:"enabled"`
	URL                 string `toml:"url"`
	AudioBucket         string `toml:"audio_bucket"`
	AudioCreatedSubject string `toml:"audio_created_subject"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Engine    EngineConfig    `toml:"engine"`
	Model     ModelConfig     `toml:"model"`
	Synthesis SynthesisConfig `toml:"synthesis"`
	Audio     AudioConfig     `toml:"audio"`
	NATS      NATSConfig      `toml:"nats"`
	Paths     PathsConfig     `toml:"paths"`
}

// Load loads the configuration for the tts-api service, fills in defaults
// for omitted fields, and applies environment overrides.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnvOverrides()

	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with the defaults the original
// deployment shipped with.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}

	if len(c.Server.CORSAllowOrigins) == 0 {
		c.Server.CORSAllowOrigins = []string{"*"}
	}

	if c.Engine.Kind == "" {
		c.Engine.Kind = EngineRunner
	}

	if c.Engine.TimeoutSeconds == 0 {
		c.Engine.TimeoutSeconds = 120
	}

	if c.Engine.MaxInFlight == 0 {
		c.Engine.MaxInFlight = 2
	}

	c.applyModelDefaults()
	c.applySynthesisDefaults()
	c.applyAudioDefaults()
}

func (c *Config) applyModelDefaults() {
	if c.Model.Dir == "" {
		c.Model.Dir = "models"
	}

	if c.Model.ConfigFile == "" {
		c.Model.ConfigFile = "wavtokenizer_mediumdata_frame75_3s_nq1_code4096_dim512_kmeans200_attn.yaml"
	}

	if c.Model.CheckpointFile == "" {
		c.Model.CheckpointFile = "wavtokenizer_large_speech_320_24k.ckpt"
	}
}

func (c *Config) applySynthesisDefaults() {
	if c.Synthesis.MaxTextLength == 0 {
		c.Synthesis.MaxTextLength = 1000
	}

	if c.Synthesis.Temperature == 0 {
		c.Synthesis.Temperature = 0.1
	}

	if c.Synthesis.RepetitionPenalty == 0 {
		c.Synthesis.RepetitionPenalty = 1.1
	}

	if c.Synthesis.MaxLength == 0 {
		c.Synthesis.MaxLength = 4000
	}

	if c.Synthesis.SampleRate == 0 {
		c.Synthesis.SampleRate = 24000
	}
}

func (c *Config) applyAudioDefaults() {
	if c.Audio.Dir == "" {
		c.Audio.Dir = os.TempDir()
	}

	if c.Audio.CleanupIntervalHours == 0 {
		c.Audio.CleanupIntervalHours = 1
	}

	if c.Audio.MaxAgeHours == 0 {
		c.Audio.MaxAgeHours = 1
	}
}

// ApplyEnvOverrides lets the deployment environment override file-based
// settings. Unset, malformed, or non-positive numeric variables leave the
// loaded values untouched.
func (c *Config) ApplyEnvOverrides() {
	if port, ok := lookupInt(EnvPort); ok && port > 0 {
		c.Server.Port = port
	}

	if host := os.Getenv(EnvHost); host != "" {
		c.Server.Host = host
	}

	if url := os.Getenv(EnvModelConfigURL); url != "" {
		c.Model.ConfigURL = url
	}

	if url := os.Getenv(EnvModelCheckpointURL); url != "" {
		c.Model.CheckpointURL = url
	}

	if hours, ok := lookupFloat(EnvCleanupIntervalHours); ok && hours > 0 {
		c.Audio.CleanupIntervalHours = hours
	}

	if url := os.Getenv(EnvRunnerURL); url != "" {
		c.Engine.RunnerURL = url
	}

	if dir := os.Getenv(EnvTempDir); dir != "" {
		c.Audio.Dir = dir
	}

	if url := os.Getenv(EnvNATSURL); url != "" {
		c.NATS.URL = url
		c.NATS.Enabled = true
	}
}

func lookupInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return value, true
}

func lookupFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
