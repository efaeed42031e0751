// Package scrape fetches a card list page and finds the card images on it.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent with every page request. Some card sites refuse
// clients without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

var (
	ErrNoContainers = errors.New("scrape: no containers match class")
	ErrInvalidURL   = errors.New("scrape: invalid url")
)

// Fetcher loads a page and returns its parsed document. The document's Url
// is the final page address and is used to resolve relative image links.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scrape: GET %s: HTTP %d", e.URL, e.Code)
}

// HTTPFetcher fetches pages with a plain HTTP GET.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	Log       *zap.Logger
}

// NewHTTPFetcher returns a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration, log *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: DefaultUserAgent,
		Log:       log,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if !ValidURL(pageURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}
	f.Log.Info("Fetching page", zap.String("url", pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: GET %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: pageURL, Code: resp.StatusCode}
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("scrape: decode %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("scrape: parse %s: %w", pageURL, err)
	}
	doc.Url = resp.Request.URL
	return doc, nil
}

// ValidURL reports whether s has both a scheme and a host.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
