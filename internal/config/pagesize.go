package config

import (
	"fmt"
	"strings"
)

// PageSize is a paper size in millimetres, portrait.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

// Landscape swaps width and height.
func (p PageSize) Landscape() PageSize {
	return PageSize{Name: p.Name, Width: p.Height, Height: p.Width}
}

// Standard paper sizes.
var (
	A3     = PageSize{Name: "A3", Width: 297, Height: 420}
	A4     = PageSize{Name: "A4", Width: 210, Height: 297}
	A5     = PageSize{Name: "A5", Width: 148, Height: 210}
	Letter = PageSize{Name: "Letter", Width: 215.9, Height: 279.4}
	Legal  = PageSize{Name: "Legal", Width: 215.9, Height: 355.6}
)

var pageSizes = map[string]PageSize{
	"a3":     A3,
	"a4":     A4,
	"a5":     A5,
	"letter": Letter,
	"legal":  Legal,
}

// LookupPageSize resolves a case-insensitive paper name.
func LookupPageSize(name string) (PageSize, error) {
	p, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownPageSize, name)
	}
	return p, nil
}
