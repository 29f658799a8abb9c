// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
// - Validation runs before any processing starts; a partial run under a bad
//   configuration would be misleading, so validation failures are fatal.
package config

import (
	"fmt"
	"math"
	"runtime"
	"sort"
)

// Scoring weight defaults. Feature delivery is weighted highest but review
// and infra work are not negligible.
const (
	defaultFeatureWeight = 0.5
	defaultReviewWeight  = 0.25
	defaultInfraWeight   = 0.25

	defaultWindowDays     = 90
	defaultTopN           = 5
	defaultMinFeatureSize = 25
	defaultRunHistory     = 32
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
	defaultMaxBodyBytes   = 8 << 20 // 8 MiB

	// weightSumTolerance bounds the float drift accepted when checking that
	// category weights sum to 1.
	weightSumTolerance = 1e-9
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath, when set, switches the binary to batch mode: load the
	// dataset, emit the ranked result as JSON on stdout, exit.
	DatasetPath string `koanf:"dataset_path"`

	// WindowDays sets the trailing analysis window applied when a dataset
	// carries no explicit window bounds.
	WindowDays int `koanf:"window_days"`

	// TopN caps the length of the ranked output.
	TopN int `koanf:"top_n"`

	// Weights maps category names (feature, review, infra) to composite
	// weights. The three weights must sum to 1.
	Weights map[string]float64 `koanf:"weights"`

	// InfraPathPrefixes designates infra/tooling directories. A merged pull
	// request touching any of them earns the infra tag.
	InfraPathPrefixes []string `koanf:"infra_path_prefixes"`

	// InfraLabels and InfraTitleKeywords earn the infra tag by label or title
	// when the touched paths alone do not reveal the nature of the work.
	InfraLabels        []string `koanf:"infra_labels"`
	InfraTitleKeywords []string `koanf:"infra_title_keywords"`

	// MinFeatureSize is the minimum lines-changed for a merged pull request
	// to count as a feature; guards against drive-by typo fixes.
	MinFeatureSize int `koanf:"min_feature_size"`

	// BotEngineers lists author ids whose activity is dropped at
	// normalization (CI bots, dependency updaters).
	BotEngineers []string `koanf:"bot_engineers"`

	// WorkerCount sets the number of fan-out workers for a run.
	WorkerCount int `koanf:"worker_count"`

	// RunHistory bounds how many past run results the in-memory store keeps.
	RunHistory int `koanf:"run_history"`

	// RateLimitRPS and RateLimitBurst shape the per-client limiter on the
	// run submission endpoint.
	RateLimitRPS   int `koanf:"rate_limit_rps"`
	RateLimitBurst int `koanf:"rate_limit_burst"`

	// MaxBodyBytes caps the accepted dataset payload size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with documented defaults.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		Addr:       ":9090",
		WindowDays: defaultWindowDays,
		TopN:       defaultTopN,
		Weights: map[string]float64{
			"feature": defaultFeatureWeight,
			"review":  defaultReviewWeight,
			"infra":   defaultInfraWeight,
		},
		InfraPathPrefixes: []string{
			".github/",
			"ci/",
			"build/",
			"docker/",
			"helm/",
			"infra/",
			"infrastructure/",
			"kubernetes/",
			"scripts/",
			"terraform/",
			"tools/",
		},
		InfraLabels:        []string{"infra", "infrastructure", "ci", "build", "tooling"},
		InfraTitleKeywords: []string{"infra", "refactor"},

		MinFeatureSize: defaultMinFeatureSize,
		WorkerCount:    runtime.NumCPU(),
		RunHistory:     defaultRunHistory,
		RateLimitRPS:   defaultRateLimitRPS,
		RateLimitBurst: defaultRateLimitBurst,
		MaxBodyBytes:   defaultMaxBodyBytes,
	}
}

// knownWeightKeys is the closed set of category keys accepted in Weights.
var knownWeightKeys = map[string]bool{
	"feature": true,
	"review":  true,
	"infra":   true,
}

// Validate checks structural configuration invariants. All violations are
// wrapped with ErrInvalidConfig so callers can errors.Is against it.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.WindowDays < 1 {
		return fmt.Errorf("%w: window_days must be >= 1, got %d", ErrInvalidConfig, c.WindowDays)
	}
	if c.TopN < 1 {
		return fmt.Errorf("%w: top_n must be >= 1, got %d", ErrInvalidConfig, c.TopN)
	}
	if c.MinFeatureSize < 0 {
		return fmt.Errorf("%w: min_feature_size must be >= 0, got %d", ErrInvalidConfig, c.MinFeatureSize)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be >= 1, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.RunHistory < 1 {
		return fmt.Errorf("%w: run_history must be >= 1, got %d", ErrInvalidConfig, c.RunHistory)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("%w: max_body_bytes must be >= 1, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	}

	// Weight keys form a closed set; unknown keys are configuration mistakes,
	// not extensions.
	keys := make([]string, 0, len(c.Weights))
	for k := range c.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sum := 0.0
	for _, k := range keys {
		if !knownWeightKeys[k] {
			return fmt.Errorf("%w: unknown weight category %q", ErrInvalidConfig, k)
		}
		w := c.Weights[k]
		if w < 0 {
			return fmt.Errorf("%w: weight %q must be >= 0, got %v", ErrInvalidConfig, k, w)
		}
		sum += w
	}
	if len(c.Weights) != len(knownWeightKeys) {
		return fmt.Errorf("%w: weights must cover feature, review and infra", ErrInvalidConfig)
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidConfig, sum)
	}

	return nil
}
