// Package config describes the jobs cardsheet runs: where the card images
// come from, how big they are, and what gets written.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cardsheet/internal/layout"
)

const (
	FormatPDF = "pdf"
	FormatPNG = "png"

	DefaultClass       = "mb-4 cardviewcard"
	DefaultOutput      = "downloaded_images"
	DefaultCardWidth   = 63.0
	DefaultCardHeight  = 88.0
	DefaultPageSize    = "A4"
	DefaultConcurrency = 4
	DefaultTimeout     = 10 * time.Second
)

var (
	ErrInvalidColor    = errors.New("config: invalid background color")
	ErrUnknownFormat   = errors.New("config: unknown output format")
	ErrUnknownPageSize = errors.New("config: unknown page size")
)

// Batch is a list of jobs run one after another.
type Batch struct {
	Jobs []Job `yaml:"jobs"`
}

// Job is one acquisition plus one output. Zero values are filled by
// Job.WithDefaults. Width and Height are pointers so an explicit 0 stays
// distinguishable from an absent value and is rejected as geometry.
type Job struct {
	URL        string   `yaml:"url"`
	Folder     string   `yaml:"folder"`   // read images from here instead of scraping URL
	URLList    string   `yaml:"url_list"` // .txt file or folder of .txt files with one image URL per line
	Output     string   `yaml:"output"`
	Format     string   `yaml:"format"` // "pdf" | "png"
	Class      string   `yaml:"class_name"`
	Width      *float64 `yaml:"width"`  // card width, mm
	Height     *float64 `yaml:"height"` // card height, mm
	Margin     float64  `yaml:"margin"` // mm
	PageSize   string   `yaml:"page_size"`
	Landscape  bool     `yaml:"landscape"`
	Background string   `yaml:"background_color"` // "r,g,b" with channels in [0,1]
	CutLines   bool     `yaml:"draw_cut_lines"`
	Direction  string   `yaml:"direction"` // "ltr" | "rtl"
	NoCenter   bool     `yaml:"no_center"`
	Browser    bool     `yaml:"browser"` // render the page in headless Chrome before scraping

	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxPixels   int           `yaml:"max_pixels"` // downscale images whose longer side exceeds this; 0 keeps originals
}

// Default returns a job with every default set and no source.
func Default() Job {
	return Job{}.WithDefaults()
}

// WithDefaults returns a copy of j with unset fields defaulted.
func (j Job) WithDefaults() Job {
	if j.Format == "" {
		j.Format = FormatPNG
		if strings.HasSuffix(strings.ToLower(j.Output), ".pdf") {
			j.Format = FormatPDF
		}
	}
	if j.Output == "" {
		j.Output = DefaultOutput
		if j.Format == FormatPDF {
			j.Output = "cards.pdf"
		}
	}
	if j.Class == "" {
		j.Class = DefaultClass
	}
	if j.Width == nil {
		j.Width = MM(DefaultCardWidth)
	}
	if j.Height == nil {
		j.Height = MM(DefaultCardHeight)
	}
	if j.PageSize == "" {
		j.PageSize = DefaultPageSize
	}
	if j.Background == "" {
		j.Background = "1,1,1"
	}
	if j.Concurrency <= 0 {
		j.Concurrency = DefaultConcurrency
	}
	if j.Timeout <= 0 {
		j.Timeout = DefaultTimeout
	}
	return j
}

// Validate checks the job without touching the network or the disk. The
// geometry is checked here so a bad card size aborts before any download.
func (j Job) Validate() error {
	switch j.Format {
	case FormatPDF, FormatPNG:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, j.Format)
	}
	if j.URL == "" && j.Folder == "" && j.URLList == "" {
		return errors.New("config: job needs a url, folder or url_list")
	}
	if j.Output == "" {
		return errors.New("config: job needs an output")
	}
	if _, err := ParseColor(j.Background); err != nil {
		return err
	}
	if _, err := layout.ParseDirection(j.Direction); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if j.Format == FormatPDF {
		if _, err := j.Geometry(); err != nil {
			return err
		}
	}
	return nil
}

// Geometry builds the page geometry for the job and validates it.
func (j Job) Geometry() (layout.Geometry, error) {
	size, err := LookupPageSize(j.PageSize)
	if err != nil {
		return layout.Geometry{}, err
	}
	if j.Landscape {
		size = size.Landscape()
	}
	dir, err := layout.ParseDirection(j.Direction)
	if err != nil {
		return layout.Geometry{}, fmt.Errorf("config: %w", err)
	}
	g := layout.Geometry{
		PageWidth:  size.Width,
		PageHeight: size.Height,
		CellWidth:  orZero(j.Width),
		CellHeight: orZero(j.Height),
		Margin:     j.Margin,
		Center:     !j.NoCenter,
		Direction:  dir,
	}
	if err := g.Validate(); err != nil {
		return layout.Geometry{}, err
	}
	return g, nil
}

// MM returns a pointer to a length in millimetres, for Job.Width and
// Job.Height.
func MM(v float64) *float64 { return &v }

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Color is an RGB triple with channels in [0,1].
type Color struct {
	R, G, B float64
}

// Bytes converts the color to 0-255 channels.
func (c Color) Bytes() (r, g, b int) {
	return int(c.R*255 + 0.5), int(c.G*255 + 0.5), int(c.B*255 + 0.5)
}

// ParseColor parses "r,g,b" (spaces allowed) with each channel in [0,1].
func ParseColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("%w: %q needs three channels", ErrInvalidColor, s)
	}
	var ch [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
		}
		if v < 0 || v > 1 {
			return Color{}, fmt.Errorf("%w: channel %g outside [0,1]", ErrInvalidColor, v)
		}
		ch[i] = v
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}
