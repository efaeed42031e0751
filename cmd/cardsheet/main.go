package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/speedata/optionparser"
	"go.uber.org/zap"

	"cardsheet/internal/acquire"
	"cardsheet/internal/app"
	"cardsheet/internal/config"
	"cardsheet/internal/logging"
	"cardsheet/internal/warband"
)

type cliOptions struct {
	output      string
	folder      string
	urlList     string
	class       string
	width       string
	height      string
	margin      string
	pageSize    string
	background  string
	direction   string
	landscape   bool
	cutLines    bool
	noCutLines  bool
	noCenter    bool
	browser     bool
	verbose     bool
	progress    bool
	concurrency string
	timeout     string
	maxPixels   string

	warbandsFolder string
	outputFolder   string
	source         string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	opts := cliOptions{
		class:          config.DefaultClass,
		pageSize:       config.DefaultPageSize,
		background:     "1,1,1",
		concurrency:    strconv.Itoa(config.DefaultConcurrency),
		timeout:        strconv.Itoa(int(config.DefaultTimeout / time.Second)),
		warbandsFolder: "warbands",
		outputFolder:   "output_pdfs",
		source:         warband.SourceFolder,
	}

	op := optionparser.NewOptionParser()
	op.Banner = "cardsheet: scrape card images and lay them out on printable sheets\nUsage: cardsheet [options] command [URL|FILE]"
	op.Command("fetch", "Save the card images of a page as PNG files")
	op.Command("pdf", "Lay out card images from a page, folder or URL list on PDF sheets")
	op.Command("warbands", "Build one PDF per warband list")
	op.Command("batch", "Run the jobs listed in a YAML file")
	op.On("-o", "--output PATH", "Output folder (fetch) or PDF file (pdf)", &opts.output)
	op.On("-c", "--class NAME", "HTML class of the image containers", &opts.class)
	op.On("--folder DIR", "Read images from DIR instead of scraping", &opts.folder)
	op.On("--url-list PATH", "Read image URLs from a .txt file or a folder of them", &opts.urlList)
	op.On("--width MM", "Card width in mm (default 63)", &opts.width)
	op.On("--height MM", "Card height in mm (default 88)", &opts.height)
	op.On("--margin MM", "Space between cards in mm (default 0)", &opts.margin)
	op.On("--page SIZE", "Page size: A3, A4, A5, Letter, Legal", &opts.pageSize)
	op.On("--landscape", "Landscape pages", &opts.landscape)
	op.On("--background R,G,B", "Page background, channels in [0,1]", &opts.background)
	op.On("--direction DIR", "Fill rows ltr or rtl", &opts.direction)
	op.On("--cut-lines", "Draw cut lines along the card edges", &opts.cutLines)
	op.On("--no-cut-lines", "Do not draw cut lines (warbands)", &opts.noCutLines)
	op.On("--no-center", "Start the grid at the top-left page corner", &opts.noCenter)
	op.On("--browser", "Render the page in headless Chrome before scraping", &opts.browser)
	op.On("--max-pixels N", "Downscale images larger than N pixels", &opts.maxPixels)
	op.On("--warbands-folder DIR", "Folder with warband .txt files", &opts.warbandsFolder)
	op.On("--output-folder DIR", "Where warband images and PDFs go", &opts.outputFolder)
	op.On("--source SRC", "Warband images from 'links' or 'folder'", &opts.source)
	op.On("--concurrency N", "Parallel image downloads", &opts.concurrency)
	op.On("--timeout SECONDS", "HTTP timeout per request", &opts.timeout)
	op.On("--progress", "Show a download progress bar", &opts.progress)
	op.On("-v", "--verbose", "Log debug messages", &opts.verbose)

	if err := op.Parse(); err != nil {
		op.Help()
		return err
	}
	if len(op.Extra) == 0 {
		op.Help()
		return errors.New("missing command")
	}

	log, err := logging.New(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := app.NewRunner(log)
	if opts.progress {
		runner.Progress = os.Stderr
	}

	cmd, args := op.Extra[0], op.Extra[1:]
	switch cmd {
	case "fetch", "pdf":
		job, err := opts.job(cmd, args)
		if err != nil {
			return err
		}
		res, err := runner.RunJob(ctx, job)
		if err != nil {
			return err
		}
		log.Info("Done", zap.Int("cards", res.Cards), zap.Int("skipped", res.Skipped), zap.Int("pages", res.Pages))
		return nil
	case "warbands":
		return opts.warbands(ctx, log)
	case "batch":
		if len(args) != 1 {
			return errors.New("batch needs exactly one YAML file")
		}
		batch, err := config.LoadBatch(args[0])
		if err != nil {
			return err
		}
		return runner.RunBatch(ctx, batch)
	default:
		op.Help()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// job turns the command line into a job for the fetch and pdf commands.
func (o cliOptions) job(cmd string, args []string) (config.Job, error) {
	n, err := o.parseNumbers()
	if err != nil {
		return config.Job{}, err
	}
	job := config.Job{
		Folder:      o.folder,
		URLList:     o.urlList,
		Output:      o.output,
		Class:       o.class,
		PageSize:    o.pageSize,
		Landscape:   o.landscape,
		Background:  o.background,
		CutLines:    o.cutLines,
		Direction:   o.direction,
		NoCenter:    o.noCenter,
		Browser:     o.browser,
		Concurrency: n.concurrency,
		Timeout:     n.timeout,
		MaxPixels:   n.maxPixels,
		Format:      config.FormatPDF,
	}
	if cmd == "fetch" {
		if o.folder != "" {
			return config.Job{}, errors.New("fetch: --folder only applies to the pdf command")
		}
		job.Format = config.FormatPNG
	}
	if len(args) > 0 && args[0] != "-" {
		job.URL = args[0]
	}
	for _, f := range []struct {
		val string
		dst **float64
	}{
		{o.width, &job.Width},
		{o.height, &job.Height},
	} {
		if f.val == "" {
			continue
		}
		v, err := strconv.ParseFloat(f.val, 64)
		if err != nil {
			return config.Job{}, fmt.Errorf("invalid number %q: %w", f.val, err)
		}
		*f.dst = config.MM(v)
	}
	if o.margin != "" {
		if job.Margin, err = strconv.ParseFloat(o.margin, 64); err != nil {
			return config.Job{}, fmt.Errorf("invalid number %q: %w", o.margin, err)
		}
	}
	job = job.WithDefaults()
	return job, job.Validate()
}

func (o cliOptions) warbands(ctx context.Context, log *zap.Logger) error {
	page, err := config.LookupPageSize(o.pageSize)
	if err != nil {
		return err
	}
	if o.landscape {
		page = page.Landscape()
	}
	bg, err := config.ParseColor(o.background)
	if err != nil {
		return err
	}
	n, err := o.parseNumbers()
	if err != nil {
		return err
	}
	d := acquire.NewDownloader(n.timeout, n.concurrency, log)
	d.Cache = acquire.NewMemoryStore[acquire.Card]()
	d.MaxPixels = n.maxPixels
	if o.progress {
		d.Progress = os.Stderr
	}
	_, err = warband.Run(ctx, warband.Options{
		WarbandsFolder: o.warbandsFolder,
		OutputFolder:   o.outputFolder,
		Source:         o.source,
		CutLines:       !o.noCutLines,
		PageSize:       page,
		Background:     bg,
		MaxPixels:      n.maxPixels,
		Downloader:     d,
		Log:            log,
	})
	return err
}

type numericOptions struct {
	concurrency int
	timeout     time.Duration
	maxPixels   int
}

// parseNumbers parses the integer options, which optionparser hands over as
// strings.
func (o cliOptions) parseNumbers() (numericOptions, error) {
	var n numericOptions
	for _, f := range []struct {
		name string
		val  string
		dst  *int
	}{
		{"--concurrency", o.concurrency, &n.concurrency},
		{"--max-pixels", o.maxPixels, &n.maxPixels},
	} {
		if f.val == "" {
			continue
		}
		v, err := strconv.Atoi(f.val)
		if err != nil {
			return numericOptions{}, fmt.Errorf("%s: invalid number %q", f.name, f.val)
		}
		*f.dst = v
	}
	if o.timeout != "" {
		secs, err := strconv.ParseFloat(o.timeout, 64)
		if err != nil {
			return numericOptions{}, fmt.Errorf("--timeout: invalid number %q", o.timeout)
		}
		n.timeout = time.Duration(secs * float64(time.Second))
	}
	return n, nil
}
