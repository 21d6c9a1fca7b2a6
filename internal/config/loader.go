package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known ASR provider names. Used by [Validate]
// to warn about unrecognised names.
var ValidProviderNames = []string{"deepgram", "mock"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// ASR provider
	if cfg.ASR.Name != "" && !slices.Contains(ValidProviderNames, cfg.ASR.Name) {
		slog.Warn("unknown ASR provider name — may be a typo or third-party provider",
			"name", cfg.ASR.Name,
			"known", ValidProviderNames,
		)
	}
	if cfg.ASR.Name == "deepgram" && cfg.ASR.APIKey == "" {
		errs = append(errs, errors.New("asr.api_key is required when asr.name is deepgram"))
	}
	if cfg.ASR.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("asr.sample_rate %d must not be negative", cfg.ASR.SampleRate))
	}

	// Review
	if th := cfg.Review.FlagThreshold; th < 0 || th > 1 {
		errs = append(errs, fmt.Errorf("review.flag_threshold %.2f is out of range [0, 1]", th))
	}

	// Dictionary
	if th := cfg.Dictionary.SuggestThreshold; th < 0 || th > 1 {
		errs = append(errs, fmt.Errorf("dictionary.suggest_threshold %.2f is out of range [0, 1]", th))
	}
	if cfg.Dictionary.LexiconPath == "" {
		slog.Warn("dictionary.lexicon_path is empty; expected phonetics must be entered manually")
	}

	// Storage
	if cfg.Storage.PostgresDSN != "" && cfg.Storage.FilePath != "" {
		slog.Warn("both storage backends configured; postgres takes precedence",
			"file_path", cfg.Storage.FilePath,
		)
	}
	if cfg.Storage.PostgresDSN == "" && cfg.Storage.FilePath == "" {
		slog.Warn("no storage backend configured; sessions are lost on shutdown")
	}

	return errors.Join(errs...)
}
