package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one converted file in the output manifest.
type ManifestEntry struct {
	Source string `json:"source"`
	Output string `json:"output"`
	Joints int    `json:"joints"`
	Frames int    `json:"frames"`
	Shape  [3]int `json:"shape"`
}

// WriteManifest writes the successful results to path as JSON. File names are
// stored relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Source: relative(base, r.Source),
			Output: relative(base, r.Output),
			Joints: r.Joints,
			Frames: r.Frames,
			Shape:  [3]int{r.Joints + 1, r.Frames, 3},
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func relative(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
