// Package pipeline orchestrates one conversion run: resolve, fetch, extract,
// select, convert, clean up. Stages execute strictly in sequence; the first
// failure terminates the run. The workspace is released on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"arxiv2epub/internal/arxiv"
	"arxiv2epub/internal/config"
	"arxiv2epub/internal/cover"
	"arxiv2epub/internal/extract"
	"arxiv2epub/internal/fileutil"
	"arxiv2epub/internal/ident"
	"arxiv2epub/internal/latex"
	"arxiv2epub/internal/logging"
	"arxiv2epub/internal/services"
	"arxiv2epub/internal/services/magick"
	"arxiv2epub/internal/services/pandoc"
	"arxiv2epub/internal/texfind"
	"arxiv2epub/internal/workspace"
)

// Options are the per-run parameters.
type Options struct {
	// Input is the arXiv identifier or URL supplied by the user.
	Input string
	// MainFile, when set, names the root TeX file explicitly and bypasses
	// the selection heuristic.
	MainFile string
	// KeepTemp retains the workspace for inspection.
	KeepTemp bool
}

// Result describes a completed run.
type Result struct {
	ID       ident.ID
	EPUBPath string
	MainFile string
	Title    string
}

// Runner executes conversion runs.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    *arxiv.Client
	converter pandoc.Client
	covers    *cover.Generator
}

// RunnerOption overrides a collaborator, primarily for tests.
type RunnerOption func(*Runner)

// WithArxivClient overrides the arXiv client.
func WithArxivClient(client *arxiv.Client) RunnerOption {
	return func(r *Runner) {
		if client != nil {
			r.client = client
		}
	}
}

// WithConverter overrides the document converter.
func WithConverter(converter pandoc.Client) RunnerOption {
	return func(r *Runner) {
		if converter != nil {
			r.converter = converter
		}
	}
}

// WithCoverGenerator overrides the cover generator.
func WithCoverGenerator(gen *cover.Generator) RunnerOption {
	return func(r *Runner) {
		if gen != nil {
			r.covers = gen
		}
	}
}

// NewRunner wires a Runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}

	var covers *cover.Generator
	if cfg.Cover.Enabled {
		covers = cover.NewGenerator(magick.NewCLI(magick.WithBinary(cfg.Cover.MagickBinary)), logger)
	} else {
		covers = cover.NewGenerator(nil, logger)
	}

	runner := &Runner{
		cfg:    cfg,
		logger: logger,
		client: arxiv.NewClient(cfg.Arxiv),
		converter: pandoc.NewCLI(
			pandoc.WithBinary(cfg.Pandoc.Binary),
			pandoc.WithMarkdownFallback(cfg.Pandoc.MarkdownFallback),
		),
		covers: covers,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run executes one conversion and returns the path of the produced EPUB.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	id, err := ident.Parse(opts.Input)
	if err != nil {
		return nil, err
	}
	logger := r.logger.With(logging.String("id", id.Canonical))
	logger.Info("starting conversion", logging.String("input", opts.Input))

	ws, err := workspace.Acquire(r.cfg.Paths.TempDir, id.FileStem(), opts.KeepTemp, logger)
	if err != nil {
		return nil, fmt.Errorf("acquire workspace: %w", err)
	}
	defer ws.Release()

	start := time.Now()
	written, err := r.client.DownloadSource(ctx, id, ws.ArchivePath())
	if err != nil {
		return nil, err
	}
	logger.Info("source downloaded",
		logging.String("url", r.client.EPrintURL(id)),
		logging.Int64("bytes", written),
		logging.Duration("elapsed", time.Since(start)),
	)

	format, err := extract.Extract(ws.ArchivePath(), ws.SourceDir(), id.FileStem())
	if err != nil {
		return nil, err
	}
	logger.Info("archive extracted", logging.String("format", format.String()))

	var mainFile string
	if opts.MainFile != "" {
		mainFile, err = texfind.SelectNamed(ws.SourceDir(), opts.MainFile)
	} else {
		mainFile, err = texfind.Select(ws.SourceDir(), id.FileStem())
	}
	if err != nil {
		return nil, err
	}
	logger.Info("main tex file selected", logging.String("file", filepath.Base(mainFile)))

	var title string
	var authors []string
	if r.cfg.Arxiv.FetchMetadata {
		if meta, err := r.client.FetchMetadata(ctx, id); err != nil {
			logger.Warn("metadata lookup failed, using bare identifier", logging.Error(err))
		} else {
			title = meta.Title
			authors = meta.Authors
		}
	}

	if r.cfg.Pandoc.Preprocess {
		if err := latex.Simplify(mainFile); err != nil {
			logger.Warn("tex preprocessing failed, converting original file", logging.Error(err))
		}
	}

	coverPath := r.covers.Generate(ctx, filepath.Dir(mainFile), id.Canonical, title)

	epubName := id.FileStem() + ".epub"
	stagedEPUB := filepath.Join(ws.Dir(), epubName)

	convertCtx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Pandoc.Timeout)*time.Second)
	defer cancel()
	convertStart := time.Now()
	err = r.converter.Convert(convertCtx, pandoc.Request{
		InputPath:   mainFile,
		OutputPath:  stagedEPUB,
		ResourceDir: filepath.Dir(mainFile),
		TOC:         r.cfg.Pandoc.TOC,
		CoverImage:  coverPath,
		Title:       title,
		Authors:     authors,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("conversion finished", logging.Duration("elapsed", time.Since(convertStart)))

	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConversion, "convert", "create output directory", r.cfg.Paths.OutputDir, err)
	}
	finalPath := filepath.Join(r.cfg.Paths.OutputDir, epubName)
	if err := fileutil.CopyFileVerified(stagedEPUB, finalPath); err != nil {
		return nil, services.Wrap(services.ErrConversion, "convert", "publish epub", finalPath, err)
	}

	logger.Info("epub written", logging.String("path", finalPath))
	return &Result{ID: id, EPUBPath: finalPath, MainFile: mainFile, Title: title}, nil
}
