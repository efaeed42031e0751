package warband

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"cardsheet/internal/acquire"
	"cardsheet/internal/config"
	"cardsheet/internal/layout"
	"cardsheet/internal/render"
)

const (
	SourceLinks  = "links"
	SourceFolder = "folder"
)

// Options configures a warband run.
type Options struct {
	WarbandsFolder string
	OutputFolder   string
	Source         string // SourceLinks or SourceFolder
	CutLines       bool
	PageSize       config.PageSize
	Background     config.Color
	MaxPixels      int
	Downloader     *acquire.Downloader // required for SourceLinks
	Log            *zap.Logger
}

// Run processes every warband file in opts.WarbandsFolder, in name order.
// A warband that fails is logged and skipped; the joined errors are
// returned together with the PDFs that were written.
func Run(ctx context.Context, opts Options) ([]string, error) {
	if opts.Source != SourceLinks && opts.Source != SourceFolder {
		return nil, fmt.Errorf("warband: unknown source %q", opts.Source)
	}
	if opts.Source == SourceLinks && opts.Downloader == nil {
		return nil, errors.New("warband: links source needs a downloader")
	}
	if err := os.MkdirAll(opts.OutputFolder, 0o750); err != nil {
		return nil, fmt.Errorf("warband: %w", err)
	}
	files, err := acquire.ListFiles(opts.WarbandsFolder, ".txt")
	if err != nil {
		return nil, fmt.Errorf("warband: %w", err)
	}

	var written []string
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		opts.Log.Info("Processing warband", zap.String("file", f))
		out, err := runOne(ctx, f, opts)
		if err != nil {
			opts.Log.Error("Warband failed", zap.String("file", f), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(f), err))
			continue
		}
		opts.Log.Info("PDF successfully created", zap.String("pdf", out))
		written = append(written, out)
	}
	return written, errors.Join(errs...)
}

func runOne(ctx context.Context, file string, opts Options) (string, error) {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	imagesDir := filepath.Join(opts.OutputFolder, base+"_images")
	pdfPath := filepath.Join(opts.OutputFolder, base+".pdf")

	var cards []acquire.Card
	switch opts.Source {
	case SourceLinks:
		urls, err := acquire.ReadURLList(file)
		if err != nil {
			return "", err
		}
		if len(urls) == 0 {
			return "", errors.New("no URLs found")
		}
		cards, _, err = opts.Downloader.Download(ctx, urls)
		if err != nil {
			return "", err
		}
		if _, err := render.SavePNGs(imagesDir, cards, opts.Log); err != nil {
			return "", err
		}
	default:
		var err error
		cards, _, err = acquire.LoadFolder(imagesDir, opts.MaxPixels, opts.Log)
		if err != nil {
			return "", err
		}
	}
	if len(cards) == 0 {
		return "", errors.New("no valid images")
	}

	sections, err := BuildSections(cards, opts.PageSize)
	if err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Clean(pdfPath))
	if err != nil {
		return "", err
	}
	_, err = render.WritePDF(f, sections, render.Options{
		Background: opts.Background,
		CutLines:   opts.CutLines,
		Title:      base,
		Log:        opts.Log,
	})
	if cErr := f.Close(); cErr != nil && err == nil {
		err = cErr
	}
	if err != nil {
		return "", err
	}
	return pdfPath, nil
}

// BuildSections groups cards and plans each non-empty group on page.
func BuildSections(cards []acquire.Card, page config.PageSize) ([]render.Section, error) {
	groups := Group(cards)
	var sections []render.Section
	for _, spec := range Sections {
		group := groups[spec.Kind]
		if len(group) == 0 {
			continue
		}
		p, err := layout.NewPlanner(layout.Geometry{
			PageWidth:  page.Width,
			PageHeight: page.Height,
			CellWidth:  spec.CardWidth,
			CellHeight: spec.CardHeight,
			Margin:     Margin,
			Center:     true,
			Direction:  spec.Direction,
		})
		if err != nil {
			return nil, fmt.Errorf("%s cards: %w", spec.Kind, err)
		}
		sections = append(sections, render.Section{Cards: group, Planner: p})
	}
	return sections, nil
}
