package acquire

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// FileName derives a file name from an image URL: the last path element,
// or image_<n>.jpg when the path has none.
func FileName(rawURL string, n int) string {
	fallback := fmt.Sprintf("image_%d.jpg", n)
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fallback
	}
	// keep names usable on every filesystem
	base = strings.Map(func(r rune) rune {
		switch r {
		case '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, base)
	return base
}

// UniqueName returns name, or name with _1, _2, ... before the extension
// when an earlier card of the same batch already took it. The result is
// added to taken.
func UniqueName(name string, taken map[string]bool) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	taken[candidate] = true
	return candidate
}
