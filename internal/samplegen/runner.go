package samplegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/difr/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run validates cfg, generates the files and writes them into cfg.Dir.
// Existing files with the same name are overwritten.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	log := logger.Named("samplegen")

	if err := os.MkdirAll(cfg.Dir, directoryPermission); err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	files, stats := Generate(cfg)
	log.Info(ctx, "generated audit files",
		logger.Int("files", len(files)),
		logger.Int("models", len(cfg.Models)),
		logger.Int("nanScores", stats.NaNScores))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(cfg.Dir, f.Name)
			if err := os.WriteFile(path, f.Body, filePermission); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrWrite, f.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats.FilesWritten = len(files)
	stats.Duration = time.Since(start)
	log.Info(ctx, "wrote audit files",
		logger.String("dir", cfg.Dir),
		logger.Int("files", stats.FilesWritten),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}
