package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scan lists the regular files directly inside dir whose extension matches ext,
// ignoring case. Subdirectories are not visited.
func Scan(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: read dir %s: %w", dir, err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			sources = append(sources, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(sources)
	return sources, nil
}
