// Package layout computes where card images go on printable pages. All
// measurements are millimetres with the origin at the top-left corner of the
// page; drawing code flips the axis if its output format needs it.
package layout

import (
	"fmt"
	"math"
)

// Direction controls the order in which cells of a row are filled.
type Direction int

const (
	// LTR fills each row from the left edge.
	LTR Direction = iota
	// RTL fills each row from the right edge. Rows and pages are unchanged.
	RTL
)

// ParseDirection accepts "ltr" or "rtl". The empty string is LTR.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "ltr":
		return LTR, nil
	case "rtl":
		return RTL, nil
	default:
		return LTR, fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) String() string {
	if d == RTL {
		return "rtl"
	}
	return "ltr"
}

// Geometry holds the physical measurements of a run. It is immutable once
// handed to NewPlanner.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	CellWidth  float64
	CellHeight float64
	Margin     float64

	// Center shifts the whole grid so the unused page area is split evenly
	// on both sides of each axis.
	Center    bool
	Direction Direction
}

// Validate reports a *GeometryError when the measurements cannot hold at
// least one cell.
func (g Geometry) Validate() error {
	_, _, err := g.Grid()
	return err
}

// MaxCells bounds the number of cells on one page.
const MaxCells = 1 << 20

// Grid returns the number of columns and rows that fit on one page.
func (g Geometry) Grid() (cols, rows int, err error) {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"page width", g.PageWidth},
		{"page height", g.PageHeight},
		{"cell width", g.CellWidth},
		{"cell height", g.CellHeight},
	} {
		if !(v.val > 0) || math.IsInf(v.val, 0) {
			return 0, 0, &GeometryError{Reason: v.name + " must be positive", Geometry: g}
		}
	}
	if g.Margin < 0 || math.IsNaN(g.Margin) || math.IsInf(g.Margin, 0) {
		return 0, 0, &GeometryError{Reason: "margin must not be negative", Geometry: g}
	}

	qx := math.Floor(g.PageWidth / (g.CellWidth + g.Margin))
	qy := math.Floor(g.PageHeight / (g.CellHeight + g.Margin))
	if qx < 1 {
		return 0, 0, &GeometryError{Axis: "horizontal", Reason: "cell too large for page", Geometry: g}
	}
	if qy < 1 {
		return 0, 0, &GeometryError{Axis: "vertical", Reason: "cell too large for page", Geometry: g}
	}
	// compared as float64 so oversized quotients never wrap an int
	if qx > MaxCells || qy > MaxCells || qx*qy > MaxCells {
		return 0, 0, &GeometryError{Reason: "too many cells per page", Geometry: g}
	}
	return int(qx), int(qy), nil
}

// GeometryError is returned when the cell, plus margin, does not fit on the
// page. It is a configuration error and is never retried.
type GeometryError struct {
	Axis     string // "horizontal", "vertical", or empty for invalid values
	Reason   string
	Geometry Geometry
}

func (e *GeometryError) Error() string {
	g := e.Geometry
	if e.Axis == "" {
		return fmt.Sprintf("layout: invalid geometry: %s", e.Reason)
	}
	return fmt.Sprintf("layout: %s (%s): cell %gx%g mm + margin %g mm on page %gx%g mm",
		e.Reason, e.Axis, g.CellWidth, g.CellHeight, g.Margin, g.PageWidth, g.PageHeight)
}
