// Package batch drives the synthesis pipeline over a tabular word list:
// one WAV file per unique entry of the first two columns.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/ibarra/parlante/internal/synth"
)

// FileGenerator is the synthesis entry point the driver feeds. Satisfied
// by *synth.Orchestrator.
type FileGenerator interface {
	GenerateFile(ctx context.Context, text, destPath string, req synth.Request) (bool, error)
}

// Driver runs one CSV file through the synthesis orchestrator.
type Driver struct {
	Orchestrator FileGenerator
	Request      synth.Request

	// Concurrency bounds the worker pool across distinct words. Phrases of
	// one word are always synthesized sequentially; going wide on a
	// rate-limited API only multiplies 429 responses, so the default is 1.
	Concurrency int
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Succeeded int
	Total     int
}

// Failed reports whether any item of the batch failed.
func (s Summary) Failed() bool { return s.Succeeded < s.Total }

// ProcessCSV reads the word list at csvPath and synthesizes audio for every
// unique word into a sibling directory named after the file. Individual
// failures are logged and counted but never abort the remaining items.
func (d *Driver) ProcessCSV(ctx context.Context, csvPath string) (Summary, error) {
	words, err := readWordList(csvPath)
	if err != nil {
		return Summary{}, err
	}

	outputDir := strings.TrimSuffix(csvPath, filepath.Ext(csvPath))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	// Distinct words can sanitize to the same filename; keep the first so
	// no two workers ever race one destination path.
	type item struct {
		word string
		dest string
	}
	seen := make(map[string]bool, len(words))
	items := make([]item, 0, len(words))
	for _, w := range words {
		dest := filepath.Join(outputDir, SanitizeFilename(w)+".wav")
		if seen[dest] {
			log.Printf("skipping %q: filename collision with an earlier word", w)
			continue
		}
		seen[dest] = true
		items = append(items, item{word: w, dest: dest})
	}

	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var succeeded, done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, it := range items {
		it := it
		g.Go(func() error {
			created, err := d.Orchestrator.GenerateFile(gctx, it.word, it.dest, d.Request)
			n := done.Add(1)
			switch {
			case err != nil:
				log.Printf("(%d/%d) %q failed: %v", n, len(items), it.word, err)
			case created:
				succeeded.Add(1)
				log.Printf("(%d/%d) %q -> %s", n, len(items), it.word, filepath.Base(it.dest))
			default:
				succeeded.Add(1)
				log.Printf("(%d/%d) %q already synthesized", n, len(items), it.word)
			}
			// Item failures never abort the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return Summary{Succeeded: int(succeeded.Load()), Total: len(items)}, nil
}

// readWordList returns the sorted unique non-empty cells of the first two
// columns, excluding the header row.
func readWordList(csvPath string) ([]string, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s is empty", csvPath)
	}
	if len(records[0]) < 2 {
		return nil, fmt.Errorf("csv must have at least 2 columns, found %d", len(records[0]))
	}

	set := make(map[string]bool)
	for _, rec := range records[1:] {
		for col := 0; col < 2 && col < len(rec); col++ {
			if w := strings.TrimSpace(rec[col]); w != "" {
				set[w] = true
			}
		}
	}

	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)
	return words, nil
}

// SanitizeFilename derives a safe filename stem from a word-list entry:
// spaces and phrase separators become underscores, and everything that is
// not a letter, digit, underscore, hyphen or dot is dropped.
func SanitizeFilename(text string) string {
	replaced := strings.NewReplacer(" ", "_", "/", "_").Replace(text)
	var b strings.Builder
	for _, r := range replaced {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
