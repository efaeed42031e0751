package layout

import "iter"

// Placement is the resolved position of one item.
type Placement struct {
	Item   int // index into the input sequence
	Page   int
	Row    int
	Col    int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Page groups the placements that share a page index, in input order.
type Page struct {
	Index      int
	Placements []Placement
}

// Planner maps item indices onto a paginated grid. It holds no mutable state
// and may be shared between goroutines.
type Planner struct {
	geom       Geometry
	cols, rows int
	offX, offY float64
}

// NewPlanner validates g and returns a planner for it. Degenerate geometry
// fails here, before any item is looked at.
func NewPlanner(g Geometry) (*Planner, error) {
	cols, rows, err := g.Grid()
	if err != nil {
		return nil, err
	}
	p := &Planner{geom: g, cols: cols, rows: rows}
	if g.Center {
		p.offX = (g.PageWidth - float64(cols)*(g.CellWidth+g.Margin)) / 2
		p.offY = (g.PageHeight - float64(rows)*(g.CellHeight+g.Margin)) / 2
	}
	return p, nil
}

func (p *Planner) Geometry() Geometry { return p.geom }

// Cols is the number of cells per row.
func (p *Planner) Cols() int { return p.cols }

// Rows is the number of cells per column.
func (p *Planner) Rows() int { return p.rows }

// PerPage is the number of cells on one page.
func (p *Planner) PerPage() int { return p.cols * p.rows }

// Offset is the constant shift applied to every placement.
func (p *Planner) Offset() (x, y float64) { return p.offX, p.offY }

// PageCount returns ceil(n / PerPage), and 0 for n <= 0.
func (p *Planner) PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n-1)/p.PerPage() + 1
}

// Place returns the placement of the item at index i (i >= 0).
func (p *Planner) Place(i int) Placement {
	per := p.PerPage()
	pos := i % per
	row := pos / p.cols
	col := pos % p.cols
	if p.geom.Direction == RTL {
		col = p.cols - 1 - col
	}
	g := p.geom
	return Placement{
		Item:   i,
		Page:   i / per,
		Row:    row,
		Col:    col,
		X:      float64(col)*(g.CellWidth+g.Margin) + p.offX,
		Y:      float64(row)*(g.CellHeight+g.Margin) + p.offY,
		Width:  g.CellWidth,
		Height: g.CellHeight,
	}
}

// Placements yields the placements for n items lazily, in input order.
func (p *Planner) Placements(n int) iter.Seq[Placement] {
	return func(yield func(Placement) bool) {
		for i := 0; i < n; i++ {
			if !yield(p.Place(i)) {
				return
			}
		}
	}
}

// Plan lays out n items and returns exactly PageCount(n) pages. The last
// page may be partially filled; empty cells are not reported.
func (p *Planner) Plan(n int) []Page {
	pages := make([]Page, p.PageCount(n))
	for i := range pages {
		pages[i].Index = i
	}
	for pl := range p.Placements(n) {
		pages[pl.Page].Placements = append(pages[pl.Page].Placements, pl)
	}
	return pages
}
