// Package samplegen writes synthetic audit files for exercising the dir source.
package samplegen

import (
	"errors"
	"time"
)

// Errors returned by Run.
var (
	ErrInvalidConfig = errors.New("invalid sample generator config")
	ErrWrite         = errors.New("write sample file")
)

// Defaults used by DefaultConfig.
const (
	defaultRuns     = 6
	defaultInterval = 7 * 24 * time.Hour
	defaultWorkers  = 4
	defaultNaNRate  = 0.05
)

// Config holds configuration for a generation run.
type Config struct {
	Dir       string        // output directory, created if missing
	Models    []string      // model identifiers, "org/name"
	Providers []string      // provider columns written into every file
	Runs      int           // files per model
	Start     time.Time     // timestamp of the first run
	Interval  time.Duration // spacing between runs of one model
	NaNRate   float64       // probability a score is written as NaN
	Seed      uint64        // PRNG seed, same seed same output
	Workers   int           // concurrent file writers
}

// DefaultConfig returns a config that writes into dir.
func DefaultConfig(dir string) *Config {
	return &Config{
		Dir:       dir,
		Models:    []string{"meta-llama/Llama-3.1-8B-Instruct", "Qwen/Qwen2.5-7B-Instruct"},
		Providers: []string{"together", "fireworks", "deepinfra", "groq"},
		Runs:      defaultRuns,
		Start:     time.Date(2025, time.January, 6, 12, 0, 0, 0, time.UTC),
		Interval:  defaultInterval,
		NaNRate:   defaultNaNRate,
		Seed:      1,
		Workers:   defaultWorkers,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Dir == "":
		return errors.Join(ErrInvalidConfig, errors.New("dir is required"))
	case len(c.Models) == 0:
		return errors.Join(ErrInvalidConfig, errors.New("at least one model is required"))
	case len(c.Providers) == 0:
		return errors.Join(ErrInvalidConfig, errors.New("at least one provider is required"))
	case c.Runs < 1:
		return errors.Join(ErrInvalidConfig, errors.New("runs must be positive"))
	case c.NaNRate < 0 || c.NaNRate > 1:
		return errors.Join(ErrInvalidConfig, errors.New("nan rate must be within [0, 1]"))
	case c.Interval < time.Second:
		return errors.Join(ErrInvalidConfig, errors.New("interval must be at least one second"))
	}
	return nil
}

// File is one generated audit file.
type File struct {
	Name string
	Body []byte
}

// Stats holds generation statistics.
type Stats struct {
	FilesWritten int
	Scores       int
	NaNScores    int
	Duration     time.Duration
}
