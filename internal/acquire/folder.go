package acquire

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// imageExtensions lists the file extensions LoadFolder picks up.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// LoadFolder reads every image in dir in lexicographic file name order.
// Files that cannot be read or decoded are logged and returned as errors;
// they do not stop the others.
func LoadFolder(dir string, maxPixels int, log *zap.Logger) ([]Card, []*AcquisitionError, error) {
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return nil, nil, fmt.Errorf("acquire: read folder: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var cards []Card
	var errs []*AcquisitionError
	for i, name := range names {
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(p) //nolint:gosec // p is a direct child of dir
		if err == nil {
			var c Card
			c, err = Normalize(name, p, data, maxPixels)
			if err == nil {
				cards = append(cards, c)
				continue
			}
		}
		log.Warn("Failed to load image", zap.String("path", p), zap.Error(err))
		errs = append(errs, &AcquisitionError{Index: i, Source: p, Err: err})
	}
	log.Info("Loaded images from folder", zap.String("folder", dir), zap.Int("count", len(cards)))
	return cards, errs, nil
}

// ReadURLList returns the trimmed, non-blank lines of a text file.
func ReadURLList(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("acquire: read %s: %w", path, err)
	}
	return urls, nil
}

// ListFiles returns the files in dir with extension ext, sorted.
func ListFiles(dir, ext string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(filepath.Clean(dir), "*"+ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadURLFolder concatenates the URL lists of every .txt file in dir.
func ReadURLFolder(dir string) ([]string, error) {
	files, err := ListFiles(dir, ".txt")
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, f := range files {
		list, err := ReadURLList(f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, list...)
	}
	return urls, nil
}

// ReadURLs reads a single list file or, for a directory, every list in it.
func ReadURLs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ReadURLFolder(path)
	}
	return ReadURLList(path)
}
