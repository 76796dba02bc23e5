// Package config handles TOML job-settings loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/vmunix/vpress/internal/policy"
)

// Config is the root job-settings structure.
type Config struct {
	Job         JobConfig         `toml:"job"`
	Compression CompressionConfig `toml:"compression"`
	Overrides   []OverrideConfig  `toml:"override"`
	FFmpeg      FFmpegConfig      `toml:"ffmpeg"`
	History     HistoryConfig     `toml:"history"`
	Log         LogConfig         `toml:"log"`
}

type JobConfig struct {
	Input    string `toml:"input"`
	Output   string `toml:"output"`
	Parallel bool   `toml:"parallel"`
	Workers  int    `toml:"workers"`
	Threads  int    `toml:"threads"`
}

// CompressionConfig selects a policy by name. The arg fields are only
// consulted for the user-defined policy.
type CompressionConfig struct {
	Policy     string `toml:"policy"`
	InputArgs  string `toml:"input_args"`
	OutputArgs string `toml:"output_args"`
}

// OverrideConfig scopes a policy to a file or directory path.
type OverrideConfig struct {
	Path string `toml:"path"`
	CompressionConfig
}

type FFmpegConfig struct {
	Binary string `toml:"binary"`
}

type HistoryConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Request converts the section to a policy request.
func (c CompressionConfig) Request() policy.Request {
	return policy.Request{
		Compression:    policy.Compression(c.Policy),
		UserInputArgs:  c.InputArgs,
		UserOutputArgs: c.OutputArgs,
	}
}

// PolicyOverrides converts the override sections, preserving order.
func (c *Config) PolicyOverrides() []policy.Override {
	overrides := make([]policy.Override, len(c.Overrides))
	for i, o := range c.Overrides {
		overrides[i] = policy.Override{Path: o.Path, Request: o.Request()}
	}
	return overrides
}

// Load reads and parses the configuration file. Validation is left to
// the caller so command-line flags can fill in settings first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Parallel execution is the default; only an explicit
	// parallel = false turns it off.
	if !md.IsDefined("job", "parallel") {
		cfg.Job.Parallel = true
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Compression.Policy == "" {
		cfg.Compression.Policy = string(policy.Default)
	}
	if cfg.FFmpeg.Binary == "" {
		cfg.FFmpeg.Binary = "ffmpeg"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
