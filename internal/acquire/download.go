package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxImageBytes bounds a single image download.
const maxImageBytes = 32 << 20

// Downloader fetches card images concurrently while keeping input order.
type Downloader struct {
	Client      *http.Client
	UserAgent   string
	Concurrency int
	MaxPixels   int
	Cache       Store[Card] // optional
	Progress    io.Writer   // optional; a progress bar is drawn here
	Log         *zap.Logger
}

// NewDownloader returns a downloader with a per-request timeout.
func NewDownloader(timeout time.Duration, concurrency int, log *zap.Logger) *Downloader {
	return &Downloader{
		Client:      &http.Client{Timeout: timeout},
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		Concurrency: concurrency,
		Log:         log,
	}
}

// Download fetches every URL. The returned cards keep the order of urls with
// failed downloads removed; each failure is logged and reported once. The
// error is non-nil only when ctx was cancelled.
func (d *Downloader) Download(ctx context.Context, urls []string) ([]Card, []*AcquisitionError, error) {
	cards := make([]*Card, len(urls))
	failed := make([]*AcquisitionError, len(urls))

	var bar *progressbar.ProgressBar
	if d.Progress != nil {
		bar = progressbar.NewOptions(len(urls),
			progressbar.OptionSetWriter(d.Progress),
			progressbar.OptionSetDescription("Downloading images"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, d.Concurrency))
	for i, u := range urls {
		g.Go(func() error {
			c, err := d.fetch(gctx, u, i+1)
			if err != nil {
				failed[i] = &AcquisitionError{Index: i, Source: u, Err: err}
				d.Log.Warn("Failed to download image", zap.String("url", u), zap.Error(err))
			} else {
				cards[i] = &c
				d.Log.Debug("Downloaded image", zap.String("url", u), zap.String("name", c.Name))
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Card, 0, len(urls))
	var errs []*AcquisitionError
	for i := range urls {
		if cards[i] != nil {
			out = append(out, *cards[i])
		} else if failed[i] != nil {
			errs = append(errs, failed[i])
		}
	}
	d.Log.Info("Download complete", zap.Int("downloaded", len(out)), zap.Int("failed", len(errs)))
	return out, errs, ctx.Err()
}

func (d *Downloader) fetch(ctx context.Context, rawURL string, n int) (Card, error) {
	if d.Cache != nil {
		if c, ok, _ := d.Cache.Get(ctx, rawURL); ok {
			return c, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return Card{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Card{}, err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return Card{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Card{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "image") {
		return Card{}, fmt.Errorf("not an image (Content-Type: %s)", ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return Card{}, err
	}
	if len(data) > maxImageBytes {
		return Card{}, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}

	c, err := Normalize(FileName(rawURL, n), rawURL, data, d.MaxPixels)
	if err != nil {
		return Card{}, err
	}
	if d.Cache != nil {
		_ = d.Cache.Put(ctx, rawURL, c)
	}
	return c, nil
}
