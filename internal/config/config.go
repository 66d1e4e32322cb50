// Package config defines the engine's static configuration and loading hooks.
//
// Conventions:
//   - New() builds a Config with defaults; Load(ctx) layers file and env on top.
//   - The Config is constructed once and passed by reference; components never
//     read configuration from globals.
//   - External errors are wrapped via this package's sentinel errors.
package config

import "context"

// Storage mode values accepted by StorageMode.
const (
	StorageBolt   = "bolt"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Aesthetic mode values accepted by AestheticMode.
const (
	ModeStrict   = "strict"
	ModeBalanced = "balanced"
	ModeCreative = "creative"
)

// Config contains the full engine configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr, when non-empty, enables a Prometheus scrape endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// Per-tier feature vector dimensions.
	StrokeDims   int `koanf:"stroke_dims"`
	ImageDims    int `koanf:"image_dims"`
	TemporalDims int `koanf:"temporal_dims"`

	// HotBudgetMS bounds synchronous stroke encoding, in milliseconds.
	HotBudgetMS float64 `koanf:"hot_budget_ms"`

	// WorkerCount sets the number of cold-path workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the cold-path task queue.
	QueueSize int `koanf:"queue_size"`

	// ColdTimeoutMS bounds each cold-path task; 0 disables the timeout.
	ColdTimeoutMS int `koanf:"cold_timeout_ms"`

	// SnapshotCadence is the number of strokes between image/temporal
	// cold-path encodings.
	SnapshotCadence int `koanf:"snapshot_cadence"`

	// Reference resolution for scale-invariant coordinate normalization.
	ReferenceWidth  float64 `koanf:"reference_width"`
	ReferenceHeight float64 `koanf:"reference_height"`

	// Confidence watermarks and decay window.
	ConfidenceLowStrokes  int     `koanf:"confidence_low_strokes"`
	ConfidenceHighStrokes int     `koanf:"confidence_high_strokes"`
	ConfidenceDecayHours  float64 `koanf:"confidence_decay_hours"`

	// Aesthetic mode and per-mode minimum score thresholds.
	AestheticMode     string  `koanf:"aesthetic_mode"`
	StrictThreshold   float64 `koanf:"strict_threshold"`
	BalancedThreshold float64 `koanf:"balanced_threshold"`
	CreativeThreshold float64 `koanf:"creative_threshold"`

	// Projection defaults.
	ProjectionNeighbors  int     `koanf:"projection_neighbors"`
	ProjectionMinDist    float64 `koanf:"projection_min_dist"`
	ProjectionComponents int     `koanf:"projection_components"`
	ProjectionMetric     string  `koanf:"projection_metric"`
	ProjectionEpochs     int     `koanf:"projection_epochs"`

	// Storage backend selection.
	StorageMode string `koanf:"storage_mode"`
	StoragePath string `koanf:"storage_path"`

	// Per-tier weights for multi-tier distance.
	StrokeWeight    float64 `koanf:"stroke_weight"`
	ImageWeight     float64 `koanf:"image_weight"`
	TemporalWeight  float64 `koanf:"temporal_weight"`
	AestheticWeight float64 `koanf:"aesthetic_weight"`

	// Seed drives every deterministic random stream in the engine.
	Seed uint32 `koanf:"seed"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		MetricsAddr:           "",
		StrokeDims:            30,
		ImageDims:             512,
		TemporalDims:          32,
		HotBudgetMS:           16,
		WorkerCount:           2,
		QueueSize:             1024,
		ColdTimeoutMS:         5000,
		SnapshotCadence:       10,
		ReferenceWidth:        1920,
		ReferenceHeight:       1080,
		ConfidenceLowStrokes:  50,
		ConfidenceHighStrokes: 200,
		ConfidenceDecayHours:  24,
		AestheticMode:         ModeBalanced,
		StrictThreshold:       0.8,
		BalancedThreshold:     0.7,
		CreativeThreshold:     0.5,
		ProjectionNeighbors:   15,
		ProjectionMinDist:     0.1,
		ProjectionComponents:  3,
		ProjectionMetric:      "cosine",
		ProjectionEpochs:      100,
		StorageMode:           StorageMemory,
		StoragePath:           "dna-sessions",
		StrokeWeight:          0.4,
		ImageWeight:           0.3,
		TemporalWeight:        0.2,
		AestheticWeight:       0.1,
		Seed:                  42,
	}
}
