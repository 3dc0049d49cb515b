package synth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ibarra/parlante/internal/audio"
	"github.com/ibarra/parlante/internal/observability"
)

// Orchestrator is the top-level synthesis entry point: text in, finished
// WAV file on disk out.
type Orchestrator struct {
	Composer *Composer
	Metrics  *observability.Metrics
}

// GenerateFile synthesizes text into a WAV file at destPath. An existing
// file at destPath is treated as already synthesized and reported as
// success with zero network activity, regardless of whether its content
// matches the current request parameters — callers delete the file to
// force regeneration. The returned flag is true when a new file was
// written on this call.
//
// On any composition or write failure no file appears at destPath: the
// container is encoded fully in memory, written to a temp file in the same
// directory, and renamed into place.
func (o *Orchestrator) GenerateFile(ctx context.Context, text, destPath string, req Request) (bool, error) {
	start := time.Now()

	if _, err := os.Stat(destPath); err == nil {
		o.Metrics.RecordFile("skipped")
		return false, nil
	} else if !os.IsNotExist(err) {
		o.Metrics.RecordFile("failed")
		return false, fmt.Errorf("stat %s: %w", destPath, err)
	}

	pcm, rate, err := o.Composer.Compose(ctx, text, req)
	if err != nil {
		o.Metrics.RecordFile("failed")
		return false, err
	}

	wav, err := audio.EncodeWAV(pcm, rate)
	if err != nil {
		o.Metrics.RecordFile("failed")
		return false, err
	}

	if err := writeFileAtomic(destPath, wav); err != nil {
		o.Metrics.RecordFile("failed")
		return false, err
	}

	o.Metrics.RecordFile("generated")
	o.Metrics.ObserveWordDuration(time.Since(start))
	return true, nil
}

// writeFileAtomic stages data in a temp file beside dest and renames it
// into place, so a crash or write error never leaves a truncated output.
func writeFileAtomic(dest string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
