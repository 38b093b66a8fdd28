package ingest

import (
	"time"

	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/pkg/logger"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency caps parallel fetches. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithTimeout bounds the whole run; expiry falls back like any other failure.
// Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithDedupeSize bounds the per-run listing dedupe cache.
func WithDedupeSize(n int) Option {
	return func(o *Orchestrator) { o.dedupeSize = n }
}

// WithFallback replaces the built-in sample dataset.
func WithFallback(f func() []model.AuditResult) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.fallback = f
		}
	}
}

// WithLogger replaces the package logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}
