package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for a quarterly Item 1C acquisition run.
const (
	DefaultIndexURL        = "https://www.sec.gov/Archives/edgar/daily-index/2026/QTR1/master.20260206.idx"
	DefaultOutputDir       = "data"
	DefaultSampleSize      = 10
	DefaultSeed            = 42
	DefaultFormType        = "10-K"
	DefaultRequestInterval = 250 * time.Millisecond
	DefaultTimeout         = 60 * time.Second
)

// Config holds the run configuration. Courtesy interval and timeout are
// configuration, not constants, so tests can run against mock fetchers
// without real delays.
type Config struct {
	// IndexURL is the master index document to load filings from.
	IndexURL string

	// OutputDir is the root directory for raw_html/, text/, and extracted/.
	OutputDir string

	// SampleSize is how many matching filings to process (0 = all).
	SampleSize int

	// Seed drives the deterministic subsample of matching filings.
	Seed int64

	// FormType is the form to process; amended variants never match.
	FormType string

	// UserAgent identifies this client to the document source.
	UserAgent string

	// RequestInterval is the minimum interval between outbound requests.
	RequestInterval time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// DefaultConfig returns a Config with the package defaults.
func DefaultConfig() Config {
	return Config{
		IndexURL:        DefaultIndexURL,
		OutputDir:       DefaultOutputDir,
		SampleSize:      DefaultSampleSize,
		Seed:            DefaultSeed,
		FormType:        DefaultFormType,
		RequestInterval: DefaultRequestInterval,
		Timeout:         DefaultTimeout,
	}
}

// fileConfig is the YAML shape of a config file. Durations are strings in
// time.ParseDuration format ("250ms", "1m30s").
type fileConfig struct {
	IndexURL        string `yaml:"index_url"`
	OutputDir       string `yaml:"output_dir"`
	SampleSize      *int   `yaml:"sample_size"`
	Seed            *int64 `yaml:"seed"`
	FormType        string `yaml:"form_type"`
	UserAgent       string `yaml:"user_agent"`
	RequestInterval string `yaml:"request_interval"`
	Timeout         string `yaml:"timeout"`
}

// LoadConfigFile reads a YAML config file and overlays it onto the defaults.
// Only keys present in the file override.
func LoadConfigFile(path string) (Config, error) {
	config := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return config, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.IndexURL != "" {
		config.IndexURL = file.IndexURL
	}
	if file.OutputDir != "" {
		config.OutputDir = file.OutputDir
	}
	if file.SampleSize != nil {
		config.SampleSize = *file.SampleSize
	}
	if file.Seed != nil {
		config.Seed = *file.Seed
	}
	if file.FormType != "" {
		config.FormType = file.FormType
	}
	if file.UserAgent != "" {
		config.UserAgent = file.UserAgent
	}
	if file.RequestInterval != "" {
		interval, err := time.ParseDuration(file.RequestInterval)
		if err != nil {
			return config, fmt.Errorf("invalid request_interval %q: %w", file.RequestInterval, err)
		}
		config.RequestInterval = interval
	}
	if file.Timeout != "" {
		timeout, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return config, fmt.Errorf("invalid timeout %q: %w", file.Timeout, err)
		}
		config.Timeout = timeout
	}

	return config, nil
}
