// Package config defines process configuration and its loading from
// defaults, an optional YAML file, and DIFR_ environment variables.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Source kinds accepted by SourceKind.
const (
	SourceGitHub = "github"
	SourceDir    = "dir"
	SourceAzBlob = "azblob"
)

// DefaultListingURL is the GitHub contents endpoint holding the public audit files.
const DefaultListingURL = "https://api.github.com/repos/luke-marks0-temp/difr-demo/contents/data"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CORSOrigins lists browser origins allowed to read the API. "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// SourceKind picks where audit files come from: github, dir or azblob.
	SourceKind string `koanf:"source_kind"`

	// ListingURL is the GitHub contents API URL for the github source.
	ListingURL string `koanf:"listing_url"`

	// GitHubToken is sent as a bearer token when set.
	GitHubToken string `koanf:"github_token"`

	// DataDir is the directory read by the dir source.
	DataDir string `koanf:"data_dir"`

	// Blob* configure the azblob source.
	BlobAccountURL string `koanf:"blob_account_url"`
	BlobContainer  string `koanf:"blob_container"`
	BlobPrefix     string `koanf:"blob_prefix"`
	BlobAnonymous  bool   `koanf:"blob_anonymous"`

	// FetchTimeout bounds a whole ingestion run. Zero disables the bound.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// FetchConcurrency caps parallel file downloads.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// DedupeSize bounds the listing name dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MetricsEnabled exposes /metrics and runs the system metrics updater.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		CORSOrigins:      []string{"*"},
		SourceKind:       SourceGitHub,
		ListingURL:       DefaultListingURL,
		DataDir:          "data",
		FetchTimeout:     30 * time.Second,
		FetchConcurrency: 8,
		DedupeSize:       10_000,
		MetricsEnabled:   true,
	}
}

// Validate checks the fields needed by the selected source.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if !slices.Contains([]string{"text", "json"}, c.LogFormat) {
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("%w: fetch_concurrency must be positive", ErrInvalidConfig)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("%w: fetch_timeout must not be negative", ErrInvalidConfig)
	}

	switch c.SourceKind {
	case SourceGitHub:
		if c.ListingURL == "" {
			return fmt.Errorf("%w: listing_url is required for the github source", ErrInvalidConfig)
		}
	case SourceDir:
		if c.DataDir == "" {
			return fmt.Errorf("%w: data_dir is required for the dir source", ErrInvalidConfig)
		}
	case SourceAzBlob:
		if c.BlobAccountURL == "" || c.BlobContainer == "" {
			return fmt.Errorf("%w: blob_account_url and blob_container are required for the azblob source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source_kind %q", ErrInvalidConfig, c.SourceKind)
	}
	return nil
}
