package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ClassSelector turns a whitespace-separated class list such as
// "mb-4 cardviewcard" into a selector matching elements that carry every
// listed class.
func ClassSelector(class string) (cascadia.Selector, error) {
	names := strings.Fields(class)
	if len(names) == 0 {
		return nil, fmt.Errorf("scrape: empty class name")
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteByte('.')
		b.WriteString(n)
	}
	sel, err := cascadia.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("scrape: class %q: %w", class, err)
	}
	return sel, nil
}

// Discover returns the absolute URLs of the images found inside the
// containers matching class, in document order. An image is counted once even
// when containers nest.
func Discover(doc *goquery.Document, class string, log *zap.Logger) ([]string, error) {
	sel, err := ClassSelector(class)
	if err != nil {
		return nil, err
	}
	containers := doc.FindMatcher(sel)
	if containers.Length() == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoContainers, class)
	}
	log.Info("Found containers", zap.Int("count", containers.Length()), zap.String("class", class))

	base := doc.Url
	seen := map[*html.Node]bool{}
	var urls []string
	containers.Each(func(i int, c *goquery.Selection) {
		imgs := c.Find("img")
		if imgs.Length() == 0 {
			log.Debug("No images in container", zap.Int("container", i+1))
			return
		}
		imgs.Each(func(_ int, img *goquery.Selection) {
			node := img.Get(0)
			if seen[node] {
				return
			}
			seen[node] = true

			src := strings.TrimSpace(img.AttrOr("src", ""))
			if src == "" {
				src = strings.TrimSpace(img.AttrOr("data-src", ""))
			}
			if src == "" {
				return
			}
			abs, ok := resolve(base, src)
			if !ok {
				log.Warn("Invalid image URL", zap.String("src", src))
				return
			}
			urls = append(urls, abs)
		})
	})
	return urls, nil
}

func resolve(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return u.String(), true
}
