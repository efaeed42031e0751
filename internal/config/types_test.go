package config

import (
	"errors"
	"testing"

	"cardsheet/internal/layout"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("1, 0.5 ,0")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c != (Color{R: 1, G: 0.5, B: 0}) {
		t.Errorf("Expected 1,0.5,0, got %+v", c)
	}
	if r, g, b := c.Bytes(); r != 255 || g != 128 || b != 0 {
		t.Errorf("Expected 255,128,0, got %d,%d,%d", r, g, b)
	}

	for _, bad := range []string{"", "1,1", "1,1,1,1", "a,b,c", "1.2,0,0", "-0.1,0,0"} {
		if _, err := ParseColor(bad); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q): expected ErrInvalidColor, got %v", bad, err)
		}
	}
}

func TestJob_WithDefaults(t *testing.T) {
	j := Job{URL: "https://example.com/deck", Output: "deck.PDF"}.WithDefaults()
	if j.Format != FormatPDF {
		t.Errorf("Expected pdf format from the output name, got %q", j.Format)
	}
	if j.Class != DefaultClass || j.PageSize != "A4" || j.Background != "1,1,1" {
		t.Errorf("Expected defaults, got class %q page %q background %q", j.Class, j.PageSize, j.Background)
	}
	if j.Concurrency != DefaultConcurrency {
		t.Errorf("Expected concurrency %d, got %d", DefaultConcurrency, j.Concurrency)
	}
	if j.Width == nil || *j.Width != DefaultCardWidth || *j.Height != DefaultCardHeight {
		t.Errorf("Expected default card size, got %v x %v", j.Width, j.Height)
	}

	j = Job{URL: "https://example.com/deck"}.WithDefaults()
	if j.Format != FormatPNG || j.Output != DefaultOutput {
		t.Errorf("Expected png into %s, got %s into %s", DefaultOutput, j.Format, j.Output)
	}

	j = Job{URL: "https://example.com/deck", Format: FormatPDF}.WithDefaults()
	if j.Output != "cards.pdf" {
		t.Errorf("Expected cards.pdf, got %s", j.Output)
	}
}

func TestJob_WithDefaultsKeepsExplicitZero(t *testing.T) {
	j := Job{Folder: "cards", Format: FormatPDF, Width: MM(0)}.WithDefaults()
	if *j.Width != 0 {
		t.Fatalf("Expected explicit width 0 to survive defaults, got %v", *j.Width)
	}
	var gerr *layout.GeometryError
	if err := j.Validate(); !errors.As(err, &gerr) {
		t.Errorf("Expected GeometryError, got %v", err)
	}
}

func TestJob_Validate(t *testing.T) {
	ok := Job{URL: "https://example.com/deck", Format: FormatPDF}.WithDefaults()
	if err := ok.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	noSource := ok
	noSource.URL = ""
	if err := noSource.Validate(); err == nil {
		t.Error("Expected error for a job without source")
	}

	badFormat := ok
	badFormat.Format = "tiff"
	if err := badFormat.Validate(); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}

	badPage := ok
	badPage.PageSize = "B7"
	if err := badPage.Validate(); !errors.Is(err, ErrUnknownPageSize) {
		t.Errorf("Expected ErrUnknownPageSize, got %v", err)
	}

	badDir := ok
	badDir.Direction = "sideways"
	if err := badDir.Validate(); err == nil {
		t.Error("Expected error for unknown direction")
	}

	// png output never lays out a page, so the card size does not matter
	bigPNG := ok
	bigPNG.Format = FormatPNG
	bigPNG.Width = MM(500)
	if err := bigPNG.Validate(); err != nil {
		t.Errorf("Unexpected error for png job: %v", err)
	}
}

func TestJob_Geometry(t *testing.T) {
	j := Job{Folder: "cards", Output: "x.pdf", Margin: 3, Landscape: true, Direction: "rtl"}.WithDefaults()
	g, err := j.Geometry()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := layout.Geometry{
		PageWidth: 297, PageHeight: 210,
		CellWidth: 63, CellHeight: 88,
		Margin: 3, Center: true, Direction: layout.RTL,
	}
	if g != want {
		t.Errorf("Expected %+v, got %+v", want, g)
	}
}

func TestLookupPageSize(t *testing.T) {
	p, err := LookupPageSize("letter")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p != Letter {
		t.Errorf("Expected Letter, got %+v", p)
	}
	if p.Landscape().Width != Letter.Height {
		t.Errorf("Expected landscape width %v, got %v", Letter.Height, p.Landscape().Width)
	}
}
