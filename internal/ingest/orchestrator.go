// Package ingest runs one pass over an audit source: list, fetch, decode, and
// match filenames. Any failure, or an empty result, switches the corpus to the
// built-in sample dataset so callers always end with something renderable.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/difr/internal/adapters/source"
	"github.com/okian/difr/internal/domain/aggregate"
	"github.com/okian/difr/internal/domain/dedupe"
	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/internal/domain/parser"
	"github.com/okian/difr/internal/domain/sample"
	"github.com/okian/difr/pkg/logger"
	"github.com/okian/difr/pkg/metrics"
)

const defaultConcurrency = 8

// Outcome is the terminal result of a run.
type Outcome struct {
	RunID         string
	State         State
	Results       []model.AuditResult
	SelectedModel string

	// Source is the adapter name, Listed the .json candidates it returned.
	Source     string
	Listed     int
	Duplicates int
	Skipped    int

	// Err is why the run fell back; nil when Ready.
	Err error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time of the run.
func (o Outcome) Duration() time.Duration { return o.FinishedAt.Sub(o.StartedAt) }

// Orchestrator drives a single ingestion pass.
type Orchestrator struct {
	src         source.Source
	concurrency int
	timeout     time.Duration
	dedupeSize  int
	fallback    func() []model.AuditResult
	log         logger.Logger
	now         func() time.Time
}

// New returns an Orchestrator reading from src.
func New(src source.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		src:         src,
		concurrency: defaultConcurrency,
		fallback:    sample.Results,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Named("ingest")
	}
	return o
}

// Run performs one ingestion pass. It never fails: errors are reported on
// the Outcome and the corpus falls back to the sample dataset.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	out := Outcome{
		RunID:     uuid.NewString(),
		State:     Loading,
		Source:    o.src.Name(),
		StartedAt: o.now(),
	}
	log := o.log.With(logger.String("run_id", out.RunID), logger.String("source", out.Source))
	metrics.UpdateIngestionState(int(Loading))
	log.Info(ctx, "ingestion started")

	runCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	results, err := o.collect(runCtx, &out)
	if err == nil && len(results) == 0 {
		err = ErrNoData
	}

	if err != nil {
		out.State = Fallback
		out.Err = err
		out.Results = o.fallback()
		log.Warn(ctx, "ingestion failed, using sample dataset", logger.Error(err))
		metrics.RecordErrorByComponent("ingest", errorKind(err))
	} else {
		out.State = Ready
		out.Results = results
	}
	if len(out.Results) > 0 {
		out.SelectedModel = out.Results[0].Model
	}

	out.FinishedAt = o.now()
	metrics.UpdateIngestionState(int(out.State))
	metrics.RecordIngestionRun(out.State.String())
	metrics.RecordIngestionDuration(float64(out.Duration().Milliseconds()))
	metrics.UpdateCorpus(len(out.Results),
		len(aggregate.Models(out.Results)), len(aggregate.ProviderNames(out.Results)))

	log.Info(ctx, "ingestion finished",
		logger.String("state", out.State.String()),
		logger.Int("records", len(out.Results)),
		logger.Int("listed", out.Listed),
		logger.Int("skipped", out.Skipped),
		logger.Duration("took", out.Duration()))
	return out
}

// fetched holds one candidate's decoded payload in listing order.
type fetched struct {
	file    source.File
	payload parser.Payload
}

// collect lists, fetches and decodes every candidate, then matches filenames.
// Every candidate is decoded before matching, so one broken .json file fails
// the run even if its name would not match.
func (o *Orchestrator) collect(ctx context.Context, out *Outcome) ([]model.AuditResult, error) {
	files, err := o.src.List(ctx)
	if err != nil {
		metrics.RecordFetchError(o.src.Name(), "list")
		return nil, err
	}

	seen := dedupe.New(dedupe.WithMaxSize(o.dedupeSize))
	unique := files[:0:0]
	for _, f := range files {
		if seen.SeenAndRecord(ctx, f.Name) {
			out.Duplicates++
			metrics.RecordFileSkipped("duplicate")
			continue
		}
		unique = append(unique, f)
	}
	out.Listed = len(unique)
	metrics.UpdateFilesListed(len(unique))

	// Each goroutine writes only its own slot, so order follows the listing.
	slots := make([]fetched, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, f := range unique {
		g.Go(func() error {
			start := time.Now()
			data, err := o.src.Fetch(gctx, f)
			if err != nil {
				metrics.RecordFetchError(o.src.Name(), "fetch")
				return err
			}
			metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))
			metrics.RecordFileFetched()

			p, err := parser.DecodePayload(data)
			if err != nil {
				metrics.RecordFetchError(o.src.Name(), "decode")
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			slots[i] = fetched{file: f, payload: p}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]model.AuditResult, 0, len(slots))
	for _, s := range slots {
		res, ok, err := parser.Build(s.file.Name, s.payload)
		if err != nil {
			metrics.RecordFetchError(o.src.Name(), "decode")
			return nil, err
		}
		if !ok {
			out.Skipped++
			metrics.RecordFileSkipped("pattern")
			o.log.Debug(ctx, "skipping file with unexpected name", logger.String("file", s.file.Name))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// errorKind labels a fallback cause for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, source.ErrListing):
		return "listing"
	case errors.Is(err, source.ErrFetch):
		return "fetch"
	case errors.Is(err, parser.ErrDecode):
		return "decode"
	default:
		return "other"
	}
}
