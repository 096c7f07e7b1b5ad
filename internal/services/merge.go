// Package services holds the business logic behind the CLI commands.
package services

import (
	"context"
	"time"

	"github.com/conneroisu/transmerge/internal/config"
	"github.com/conneroisu/transmerge/internal/locale"
	"github.com/conneroisu/transmerge/internal/logging"
	"github.com/conneroisu/transmerge/internal/merger"
	"github.com/conneroisu/transmerge/internal/storage"
)

// Storage is the file access a merge run needs.
type Storage interface {
	Discover(ctx context.Context, root, pattern string, exclude []string) ([]string, error)
	merger.FragmentReader
	merger.FragmentWriter
}

// MergeService runs one full translation merge
type MergeService struct {
	config *config.Config
	store  Storage
	logger logging.Logger
}

// NewMergeService creates a new merge service. A nil store uses local files.
func NewMergeService(cfg *config.Config, store Storage, logger logging.Logger) *MergeService {
	if store == nil {
		store = storage.New()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MergeService{
		config: cfg,
		store:  store,
		logger: logger.WithComponent("merge_service"),
	}
}

// MergeOptions contains options for a merge run
type MergeOptions struct {
	// Module is the display name of the module that triggered the run.
	Module string
	// DryRun merges and renders without writing anything.
	DryRun bool
}

// MergeResult contains the result of a merge run
type MergeResult struct {
	Module   string          `json:"module" yaml:"module"`
	Files    []string        `json:"files" yaml:"files"`
	Locales  []string        `json:"locales" yaml:"locales"`
	Outputs  []merger.Output `json:"outputs" yaml:"outputs"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
	DryRun   bool            `json:"dry_run" yaml:"dry_run"`
}

// Run discovers, merges and writes every locale from scratch. Nothing is
// written unless every fragment was read and parsed.
func (s *MergeService) Run(ctx context.Context, opts MergeOptions) (*MergeResult, error) {
	var settings *config.MergeConfig
	if s.config != nil {
		settings = &s.config.Merge
	}
	if err := settings.RequirePresent(); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Merging translation files for "+opts.Module, "module", opts.Module)
	perf := logging.StartOperation(s.logger, "merge")

	result, err := s.run(ctx, settings, opts)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	result.Duration = perf.Elapsed()
	perf.End(ctx, "locales", len(result.Locales), "files", len(result.Files))
	s.logger.Info(ctx, "Translation files merged successfully",
		"module", opts.Module,
		"locales", len(result.Locales),
		"dry_run", opts.DryRun,
	)
	return result, nil
}

func (s *MergeService) run(ctx context.Context, settings *config.MergeConfig, opts MergeOptions) (*MergeResult, error) {
	extractor, err := locale.New(settings.MatchPattern)
	if err != nil {
		return nil, err
	}

	files, err := s.store.Discover(ctx, settings.SearchRoot(), settings.SearchGlobPattern, settings.Exclude)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Discovered translation files",
		"root", settings.SearchRoot(),
		"pattern", settings.SearchGlobPattern,
		"count", len(files),
	)
	for _, file := range files {
		s.logger.Debug(ctx, "Translation file", "file", file)
	}

	set, err := merger.New(extractor, s.store, s.logger).Merge(ctx, files)
	if err != nil {
		return nil, err
	}

	destination := storage.Join(settings.StagingRoot, settings.DestinationPath)

	var outputs []merger.Output
	if opts.DryRun {
		outputs, _, err = merger.Render(set, destination)
	} else {
		outputs, err = merger.Write(ctx, set, s.store, destination)
	}
	if err != nil {
		return nil, err
	}

	return &MergeResult{
		Module:  opts.Module,
		Files:   files,
		Locales: set.Locales(),
		Outputs: outputs,
		DryRun:  opts.DryRun,
	}, nil
}
