// Package artifacts discovers job result files in the shared results
// directory by filename convention.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Locate returns the most recently modified file in dir whose name starts
// with prefix and ends in ".json". An empty path with a nil error means no
// candidate matched; a missing artifact is a reportable state, not a
// failure. Equal modification times are broken by name so the result stays
// deterministic.
func Locate(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading results dir %q: %w", dir, err)
	}

	var (
		bestName string
		bestTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Entry vanished between ReadDir and Stat; skip it.
			continue
		}
		mtime := info.ModTime()
		if bestName == "" || mtime.After(bestTime) || (mtime.Equal(bestTime) && name > bestName) {
			bestName = name
			bestTime = mtime
		}
	}

	if bestName == "" {
		return "", nil
	}
	return filepath.Join(dir, bestName), nil
}
