package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one conversion in the output manifest.
type ManifestEntry struct {
	Input    string   `json:"input"`
	Output   string   `json:"output,omitempty"`
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// WriteManifest writes manifest.json summarizing a batch run.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Input:    r.Input,
			Output:   r.Output,
			Success:  r.Success,
			Error:    r.Error,
			Warnings: r.Warnings,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
