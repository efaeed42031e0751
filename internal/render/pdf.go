// Package render draws planned card sheets into a PDF and writes cards out
// as PNG files.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf/v2"
	"go.uber.org/zap"

	"cardsheet/internal/acquire"
	"cardsheet/internal/config"
	"cardsheet/internal/layout"
)

const cutLineWidth = 0.1 // mm

var ErrNothingToRender = errors.New("render: no cards to render")

// Section is a run of cards laid out with one planner. Every section starts
// on a fresh page.
type Section struct {
	Cards   []acquire.Card
	Planner *layout.Planner
}

// Options controls page decoration.
type Options struct {
	Background config.Color
	CutLines   bool
	Title      string
	Log        *zap.Logger
}

// WritePDF renders the sections into one PDF document written to w and
// returns the number of pages. An image that cannot be embedded is logged
// and its cell left empty; the rest of the sheet is unaffected.
func WritePDF(w io.Writer, sections []Section, opts Options) (int, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	total := 0
	for _, s := range sections {
		total += len(s.Cards)
	}
	if total == 0 {
		return 0, ErrNothingToRender
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("cardsheet", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}

	for _, s := range sections {
		if len(s.Cards) == 0 {
			continue
		}
		drawSection(pdf, s, opts, log)
		if err := pdf.Error(); err != nil {
			return 0, fmt.Errorf("render: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("render: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return pdf.PageNo(), nil
}

func drawSection(pdf *gofpdf.Fpdf, s Section, opts Options, log *zap.Logger) {
	g := s.Planner.Geometry()
	size := gofpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight}
	orientation := "P"
	if g.PageWidth > g.PageHeight {
		orientation = "L"
		size = gofpdf.SizeType{Wd: g.PageHeight, Ht: g.PageWidth}
	}

	page := -1
	for pl := range s.Planner.Placements(len(s.Cards)) {
		if pl.Page != page {
			if page >= 0 && opts.CutLines {
				drawCutLines(pdf, s.Planner)
			}
			page = pl.Page
			pdf.AddPageFormat(orientation, size)
			fillBackground(pdf, g, opts.Background)
		}
		card := s.Cards[pl.Item]
		if err := drawCard(pdf, card, pl); err != nil {
			log.Warn("Failed to draw card", zap.String("card", card.Name), zap.Int("page", pl.Page), zap.Error(err))
			pdf.ClearError()
		}
	}
	if page >= 0 && opts.CutLines {
		drawCutLines(pdf, s.Planner)
	}
}

func fillBackground(pdf *gofpdf.Fpdf, g layout.Geometry, c config.Color) {
	r, gr, b := c.Bytes()
	if r == 255 && gr == 255 && b == 255 {
		return
	}
	pdf.SetFillColor(r, gr, b)
	pdf.Rect(0, 0, g.PageWidth, g.PageHeight, "F")
}

// drawCard fits the card into its cell keeping the aspect ratio, centred.
func drawCard(pdf *gofpdf.Fpdf, c acquire.Card, pl layout.Placement) error {
	imageType := "PNG"
	if c.Format == "jpeg" {
		imageType = "JPG"
	}
	name := uuid.NewString()
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.Data))
	if err := pdf.Error(); err != nil {
		return err
	}
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		return fmt.Errorf("empty image")
	}

	x, y, w, h := fit(info.Width(), info.Height(), pl)
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return pdf.Error()
}

// fit returns the largest rectangle with the image's aspect ratio that fits
// the placement cell, centred in it.
func fit(imgW, imgH float64, pl layout.Placement) (x, y, w, h float64) {
	scale := min(pl.Width/imgW, pl.Height/imgH)
	w, h = imgW*scale, imgH*scale
	return pl.X + (pl.Width-w)/2, pl.Y + (pl.Height-h)/2, w, h
}

// segment is a straight line from (X1, Y1) to (X2, Y2) in mm.
type segment struct{ X1, Y1, X2, Y2 float64 }

// cutLines returns lines running across the whole page along both edges of
// every column and row of the grid.
func cutLines(p *layout.Planner) []segment {
	g := p.Geometry()
	ox, oy := p.Offset()
	lines := make([]segment, 0, 2*(p.Cols()+p.Rows()))
	for col := 0; col < p.Cols(); col++ {
		x := ox + float64(col)*(g.CellWidth+g.Margin)
		lines = append(lines,
			segment{x, 0, x, g.PageHeight},
			segment{x + g.CellWidth, 0, x + g.CellWidth, g.PageHeight})
	}
	for row := 0; row < p.Rows(); row++ {
		y := oy + float64(row)*(g.CellHeight+g.Margin)
		lines = append(lines,
			segment{0, y, g.PageWidth, y},
			segment{0, y + g.CellHeight, g.PageWidth, y + g.CellHeight})
	}
	return lines
}

func drawCutLines(pdf *gofpdf.Fpdf, p *layout.Planner) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(cutLineWidth)
	for _, l := range cutLines(p) {
		pdf.Line(l.X1, l.Y1, l.X2, l.Y2)
	}
}
