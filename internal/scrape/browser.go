package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserFetcher renders the page in headless Chrome and scrapes the DOM
// after scripts ran. Use it for deck pages that build the card grid
// client-side.
type BrowserFetcher struct {
	ChromePath string
	NoSandbox  bool
	Timeout    time.Duration
	// Settle is how long to wait after the body is ready for late images.
	Settle time.Duration
	Log    *zap.Logger
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil || !ValidURL(pageURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}
	f.Log.Info("Rendering page in headless browser", zap.String("url", pageURL))

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
		chromedp.UserAgent(DefaultUserAgent),
	)
	if f.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(f.ChromePath))
	}
	if f.NoSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("scrape: render %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("scrape: parse %s: %w", pageURL, err)
	}
	doc.Url = u
	return doc, nil
}
