package warband

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cardsheet/internal/acquire"
	"cardsheet/internal/config"
	"cardsheet/internal/layout"
)

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"GR10.png":                Dedicated,
		"Order_Warscroll.png":     Dedicated,
		"DEATH-fighter.png":       Dedicated,
		"chaos_leader.png":        Dedicated,
		"destruction.png":         Dedicated,
		"fighter_inspired.png":    Inspired,
		"Inspired_Leader.PNG":     Inspired,
		"inspired_10.png":         Dedicated, // "0" wins
		"GR1.png":                 Other,
		"ploy-great-strength.png": Other,
	}
	for name, want := range cases {
		assert.Equal(t, want, Classify(name), name)
	}
}

func TestGroup_KeepsOrder(t *testing.T) {
	cards := []acquire.Card{{Name: "a.png"}, {Name: "x_inspired.png"}, {Name: "b.png"}, {Name: "order.png"}}
	g := Group(cards)
	assert.Equal(t, []acquire.Card{{Name: "a.png"}, {Name: "b.png"}}, g[Other])
	assert.Equal(t, []acquire.Card{{Name: "x_inspired.png"}}, g[Inspired])
	assert.Equal(t, []acquire.Card{{Name: "order.png"}}, g[Dedicated])
}

func TestBuildSections(t *testing.T) {
	cards := []acquire.Card{{Name: "a.png"}, {Name: "x_inspired.png"}, {Name: "order.png"}}
	sections, err := BuildSections(cards, config.A4)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "a.png", sections[0].Cards[0].Name)
	assert.Equal(t, layout.RTL, sections[1].Planner.Geometry().Direction)
	big := sections[2].Planner
	assert.Equal(t, 148.0, big.Geometry().CellWidth)
	assert.Equal(t, 1, big.Cols())
	assert.Equal(t, 2, big.Rows())

	sections, err = BuildSections([]acquire.Card{{Name: "a.png"}}, config.A4)
	require.NoError(t, err)
	assert.Len(t, sections, 1)
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 63, 88))))
	return buf.Bytes()
}

func TestRun_FromFolder(t *testing.T) {
	root := t.TempDir()
	warbands := filepath.Join(root, "warbands")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(warbands, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(warbands, "grashraks.txt"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(warbands, "empty.txt"), nil, 0o600))

	images := filepath.Join(out, "grashraks_images")
	require.NoError(t, os.MkdirAll(images, 0o750))
	for _, name := range []string{"GR1.png", "GR2_inspired.png", "chaos.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(images, name), pngData(t), 0o600))
	}

	written, err := Run(context.Background(), Options{
		WarbandsFolder: warbands,
		OutputFolder:   out,
		Source:         SourceFolder,
		CutLines:       true,
		PageSize:       config.A4,
		Background:     config.Color{R: 1, G: 1, B: 1},
		Log:            zap.NewNop(),
	})
	// "empty" has no images folder
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty.txt")
	assert.Equal(t, []string{filepath.Join(out, "grashraks.pdf")}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRun_FromLinks(t *testing.T) {
	card := pngData(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(card)
	}))
	defer srv.Close()

	root := t.TempDir()
	warbands := filepath.Join(root, "warbands")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(warbands, 0o750))
	list := srv.URL + "/GR1.png\n\n" + srv.URL + "/missing.png\n" + srv.URL + "/GR_inspired.png\n"
	require.NoError(t, os.WriteFile(filepath.Join(warbands, "grashraks.txt"), []byte(list), 0o600))

	written, err := Run(context.Background(), Options{
		WarbandsFolder: warbands,
		OutputFolder:   out,
		Source:         SourceLinks,
		PageSize:       config.A4,
		Downloader:     acquire.NewDownloader(time.Second, 2, zap.NewNop()),
		Log:            zap.NewNop(),
	})
	require.NoError(t, err)
	require.Len(t, written, 1)

	saved, err := os.ReadDir(filepath.Join(out, "grashraks_images"))
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestRun_LinksRerunThenFolder(t *testing.T) {
	card := pngData(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(card)
	}))
	defer srv.Close()

	root := t.TempDir()
	warbands := filepath.Join(root, "warbands")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(warbands, 0o750))
	list := srv.URL + "/GR1.png\n" + srv.URL + "/GR2.png\n"
	require.NoError(t, os.WriteFile(filepath.Join(warbands, "grashraks.txt"), []byte(list), 0o600))

	opts := Options{
		WarbandsFolder: warbands,
		OutputFolder:   out,
		Source:         SourceLinks,
		PageSize:       config.A4,
		Downloader:     acquire.NewDownloader(time.Second, 2, zap.NewNop()),
		Log:            zap.NewNop(),
	}
	for i := 0; i < 2; i++ {
		_, err := Run(context.Background(), opts)
		require.NoError(t, err, "run %d", i)
	}

	cards, _, err := acquire.LoadFolder(filepath.Join(out, "grashraks_images"), 0, zap.NewNop())
	require.NoError(t, err)
	var names []string
	for _, c := range cards {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"GR1.png", "GR2.png"}, names)

	opts.Source = SourceFolder
	written, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "grashraks.pdf")}, written)
}

func TestRun_UnknownSource(t *testing.T) {
	_, err := Run(context.Background(), Options{Source: "cloud", Log: zap.NewNop()})
	assert.Error(t, err)
}
