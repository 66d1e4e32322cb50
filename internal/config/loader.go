package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if DNA_CONFIG is set
//  3. env (prefix DNA_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("DNA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DNA_WORKER_COUNT, DNA_STORAGE_MODE, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("DNA_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "dna_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the rest of the engine relies on.
func (c *Config) Validate() error {
	if c.StrokeDims <= 0 || c.ImageDims <= 0 || c.TemporalDims <= 0 {
		return fmt.Errorf("%w: tier dimensions must be positive", ErrInvalidConfig)
	}
	if c.HotBudgetMS <= 0 {
		return fmt.Errorf("%w: hot budget must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker count must be at least 1", ErrInvalidConfig)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be at least 1", ErrInvalidConfig)
	}
	if c.ReferenceWidth <= 0 || c.ReferenceHeight <= 0 {
		return fmt.Errorf("%w: reference resolution must be positive", ErrInvalidConfig)
	}
	if c.ConfidenceLowStrokes >= c.ConfidenceHighStrokes {
		return fmt.Errorf("%w: confidence low watermark must be below high watermark", ErrInvalidConfig)
	}
	switch c.StorageMode {
	case StorageBolt, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage mode %q", ErrInvalidConfig, c.StorageMode)
	}
	switch c.AestheticMode {
	case ModeStrict, ModeBalanced, ModeCreative:
	default:
		return fmt.Errorf("%w: unknown aesthetic mode %q", ErrInvalidConfig, c.AestheticMode)
	}
	if c.StrokeWeight < 0 || c.ImageWeight < 0 || c.TemporalWeight < 0 || c.AestheticWeight < 0 {
		return fmt.Errorf("%w: tier weights must be non-negative", ErrInvalidConfig)
	}
	return nil
}
