package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardsheet/internal/config"
	"cardsheet/internal/layout"
)

func defaults() cliOptions {
	return cliOptions{
		class:       config.DefaultClass,
		pageSize:    config.DefaultPageSize,
		background:  "1,1,1",
		concurrency: "4",
		timeout:     "10",
	}
}

func TestJob_Fetch(t *testing.T) {
	o := defaults()
	o.output = "rivals_decks/wrack_and_ruin"
	job, err := o.job("fetch", []string{"https://www.underworldsdb.com/shared.php?deck=0,WR1"})
	require.NoError(t, err)
	assert.Equal(t, config.FormatPNG, job.Format)
	assert.Empty(t, job.Folder)
	assert.Equal(t, 10*time.Second, job.Timeout)
}

func TestJob_FetchRejectsFolder(t *testing.T) {
	o := defaults()
	o.folder = "cards"
	_, err := o.job("fetch", []string{"https://www.underworldsdb.com/shared.php?deck=0,WR1"})
	assert.ErrorContains(t, err, "--folder")
}

func TestJob_PDF(t *testing.T) {
	o := defaults()
	o.output = "deck.pdf"
	o.folder = "rivals_decks/wrack_and_ruin"
	o.margin = "3"
	o.width = "63.5"
	o.cutLines = true
	job, err := o.job("pdf", []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, config.FormatPDF, job.Format)
	assert.Empty(t, job.URL)
	assert.Equal(t, 3.0, job.Margin)
	require.NotNil(t, job.Width)
	assert.Equal(t, 63.5, *job.Width)
	assert.Equal(t, 88.0, *job.Height)
	assert.True(t, job.CutLines)
}

func TestJob_Invalid(t *testing.T) {
	o := defaults()
	o.folder = "cards"
	o.width = "wide"
	_, err := o.job("pdf", nil)
	assert.Error(t, err)

	o = defaults()
	o.folder = "cards"
	o.width = "300"
	_, err = o.job("pdf", nil)
	assert.Error(t, err)

	o = defaults()
	o.folder = "cards"
	o.height = "0"
	_, err = o.job("pdf", nil)
	var gerr *layout.GeometryError
	assert.ErrorAs(t, err, &gerr)

	o = defaults()
	o.concurrency = "many"
	_, err = o.job("fetch", []string{"https://example.com"})
	assert.Error(t, err)
}

func TestParseNumbers(t *testing.T) {
	o := defaults()
	o.timeout = "2.5"
	o.maxPixels = "1200"
	n, err := o.parseNumbers()
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, n.timeout)
	assert.Equal(t, 1200, n.maxPixels)
	assert.Equal(t, 4, n.concurrency)
}
