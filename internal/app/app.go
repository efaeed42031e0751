// Package app wires acquisition, layout and rendering into runnable jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"cardsheet/internal/acquire"
	"cardsheet/internal/config"
	"cardsheet/internal/layout"
	"cardsheet/internal/render"
	"cardsheet/internal/scrape"
)

var ErrNoImages = errors.New("app: no images acquired")

// Runner executes jobs. The zero value is not usable; set Log at least.
type Runner struct {
	Log *zap.Logger
	// Cache is shared by every job the runner executes.
	Cache    acquire.Store[acquire.Card]
	Progress io.Writer
	// NewFetcher overrides page fetching; nil picks HTTP or headless
	// Chrome from the job.
	NewFetcher func(job config.Job) scrape.Fetcher
}

// NewRunner returns a runner with an in-memory image cache.
func NewRunner(log *zap.Logger) *Runner {
	return &Runner{Log: log, Cache: acquire.NewMemoryStore[acquire.Card]()}
}

// Result summarises a finished job.
type Result struct {
	Cards   int      // images placed or saved
	Skipped int      // images that failed to load
	Pages   int      // PDF pages, 0 for PNG output
	Outputs []string // written files
}

// RunJob validates the job, acquires its images and writes the output.
// Geometry problems are reported before anything is fetched.
func (r *Runner) RunJob(ctx context.Context, job config.Job) (Result, error) {
	job = job.WithDefaults()
	if err := job.Validate(); err != nil {
		return Result{}, err
	}
	var planner *layout.Planner
	if job.Format == config.FormatPDF {
		g, err := job.Geometry()
		if err != nil {
			return Result{}, err
		}
		if planner, err = layout.NewPlanner(g); err != nil {
			return Result{}, err
		}
	}

	cards, failed, err := r.acquire(ctx, job)
	if err != nil {
		return Result{}, err
	}
	res := Result{Cards: len(cards), Skipped: len(failed)}
	if len(cards) == 0 {
		return res, ErrNoImages
	}

	switch job.Format {
	case config.FormatPNG:
		paths, err := render.SavePNGs(job.Output, cards, r.Log)
		res.Outputs = paths
		return res, err
	default:
		pages, err := r.writePDF(job, cards, planner)
		if err != nil {
			return res, err
		}
		res.Pages = pages
		res.Outputs = []string{job.Output}
		r.Log.Info("PDF successfully created", zap.String("pdf", job.Output), zap.Int("pages", pages), zap.Int("cards", len(cards)))
		return res, nil
	}
}

func (r *Runner) acquire(ctx context.Context, job config.Job) ([]acquire.Card, []*acquire.AcquisitionError, error) {
	if job.Folder != "" {
		return acquire.LoadFolder(job.Folder, job.MaxPixels, r.Log)
	}

	var urls []string
	if job.URLList != "" {
		list, err := acquire.ReadURLs(job.URLList)
		if err != nil {
			return nil, nil, fmt.Errorf("app: url list: %w", err)
		}
		urls = list
		r.Log.Info("Found URLs", zap.Int("count", len(urls)), zap.String("source", job.URLList))
	} else {
		doc, err := r.fetcher(job).Fetch(ctx, job.URL)
		if err != nil {
			return nil, nil, err
		}
		if urls, err = scrape.Discover(doc, job.Class, r.Log); err != nil {
			return nil, nil, err
		}
	}

	d := acquire.NewDownloader(job.Timeout, job.Concurrency, r.Log)
	d.Cache = r.Cache
	d.MaxPixels = job.MaxPixels
	d.Progress = r.Progress
	return d.Download(ctx, urls)
}

func (r *Runner) fetcher(job config.Job) scrape.Fetcher {
	if r.NewFetcher != nil {
		return r.NewFetcher(job)
	}
	if job.Browser {
		return &scrape.BrowserFetcher{Timeout: 3 * job.Timeout, Log: r.Log}
	}
	return scrape.NewHTTPFetcher(job.Timeout, r.Log)
}

func (r *Runner) writePDF(job config.Job, cards []acquire.Card, planner *layout.Planner) (int, error) {
	bg, err := config.ParseColor(job.Background)
	if err != nil {
		return 0, err
	}
	if dir := filepath.Dir(job.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("app: %w", err)
		}
	}
	f, err := os.Create(filepath.Clean(job.Output))
	if err != nil {
		return 0, fmt.Errorf("app: %w", err)
	}
	pages, err := render.WritePDF(f, []render.Section{{Cards: cards, Planner: planner}}, render.Options{
		Background: bg,
		CutLines:   job.CutLines,
		Title:      filepath.Base(job.Output),
		Log:        r.Log,
	})
	if cErr := f.Close(); cErr != nil && err == nil {
		err = cErr
	}
	return pages, err
}

// RunBatch runs the jobs in order. A failing job is logged and the batch
// moves on; the joined errors are returned at the end.
func (r *Runner) RunBatch(ctx context.Context, batch *config.Batch) error {
	var errs []error
	for i, job := range batch.Jobs {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		r.Log.Info("Running configuration", zap.Int("job", i+1), zap.Int("of", len(batch.Jobs)), zap.String("output", job.Output))
		if _, err := r.RunJob(ctx, job); err != nil {
			r.Log.Error("Configuration failed", zap.Int("job", i+1), zap.Error(err))
			errs = append(errs, fmt.Errorf("job %d (%s): %w", i+1, job.Output, err))
			continue
		}
		r.Log.Info("Configuration completed successfully", zap.Int("job", i+1))
	}
	return errors.Join(errs...)
}
