// Package manifest maintains the manifest.json the front-end application
// reads to discover available word-list files.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Entry describes one word-list file.
type Entry struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// Update scans dataDir for CSV files and rewrites manifest.json there.
// It returns the entries written.
func Update(dataDir string) ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan data dir: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no csv files found in %s", dataDir)
	}
	sort.Strings(matches)

	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		entries = append(entries, Entry{Name: FormatName(base), File: base})
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	out = append(out, '\n')

	path := filepath.Join(dataDir, "manifest.json")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return entries, nil
}

// FormatName turns a CSV filename into a human-readable set name:
// "vocabulary_level_1.csv" becomes "Vocabulary Level 1".
func FormatName(filename string) string {
	name := strings.TrimSuffix(filename, ".csv")
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
