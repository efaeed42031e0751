// Package warband builds print sheets for warband card lists. Each warband
// is a .txt file of image URLs; its cards are split into sections that are
// laid out with their own card size and fill direction.
package warband

import (
	"strings"

	"cardsheet/internal/acquire"
	"cardsheet/internal/layout"
)

// Kind is the section a card belongs to.
type Kind int

const (
	Other Kind = iota
	Inspired
	Dedicated
)

func (k Kind) String() string {
	switch k {
	case Inspired:
		return "inspired"
	case Dedicated:
		return "dedicated"
	default:
		return "other"
	}
}

// dedicatedKeywords mark large-format cards (fighter and warscroll cards).
var dedicatedKeywords = []string{"0", "order", "destruction", "death", "chaos"}

// Classify sorts a card by its file name. Dedicated keywords win over
// "inspired".
func Classify(name string) Kind {
	lower := strings.ToLower(name)
	for _, kw := range dedicatedKeywords {
		if strings.Contains(lower, kw) {
			return Dedicated
		}
	}
	if strings.Contains(lower, "inspired") {
		return Inspired
	}
	return Other
}

// SectionSpec is the cell geometry used for one kind of card.
type SectionSpec struct {
	Kind       Kind
	CardWidth  float64
	CardHeight float64
	Direction  layout.Direction
}

// Margin between warband cards, mm.
const Margin = 3.0

// Sections lists the sections in print order. Inspired cards are mirrored
// so that printing them on the back of the matching page lines them up.
var Sections = []SectionSpec{
	{Kind: Other, CardWidth: 63, CardHeight: 88, Direction: layout.LTR},
	{Kind: Inspired, CardWidth: 63, CardHeight: 88, Direction: layout.RTL},
	{Kind: Dedicated, CardWidth: 148, CardHeight: 105, Direction: layout.LTR},
}

// Group splits cards by Classify, keeping their relative order.
func Group(cards []acquire.Card) map[Kind][]acquire.Card {
	out := map[Kind][]acquire.Card{}
	for _, c := range cards {
		k := Classify(c.Name)
		out[k] = append(out[k], c)
	}
	return out
}
