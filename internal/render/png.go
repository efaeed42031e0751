package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"cardsheet/internal/acquire"
)

// SavePNGs writes every card into dir as a PNG file and returns the paths
// in card order. Files left by an earlier run are replaced, so saving the
// same cards twice yields the same folder. Cards sharing a name within one
// call get a numeric suffix.
func SavePNGs(dir string, cards []acquire.Card, log *zap.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("render: mkdir %s: %w", dir, err)
	}
	paths := make([]string, 0, len(cards))
	taken := make(map[string]bool, len(cards))
	for _, c := range cards {
		data, err := c.PNG()
		if err != nil {
			log.Warn("Failed to convert card", zap.String("card", c.Name), zap.Error(err))
			continue
		}
		name := strings.TrimSuffix(c.Name, filepath.Ext(c.Name)) + ".png"
		p := filepath.Join(dir, acquire.UniqueName(name, taken))
		if err := os.WriteFile(p, data, 0o600); err != nil {
			return paths, fmt.Errorf("render: write %s: %w", p, err)
		}
		log.Debug("Saved image", zap.String("path", p))
		paths = append(paths, p)
	}
	log.Info("Saved images", zap.Int("count", len(paths)), zap.String("folder", dir))
	return paths, nil
}
