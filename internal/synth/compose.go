package synth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ibarra/parlante/internal/audio"
	"github.com/ibarra/parlante/internal/observability"
)

const (
	// PhraseSeparator splits one word-list entry into independently spoken
	// segments.
	PhraseSeparator = "/"

	// DefaultPauseDuration is the silence inserted between consecutive
	// phrases of one entry.
	DefaultPauseDuration = 500 * time.Millisecond

	// leadInDuration is prepended to every composed result to mask the
	// playback-start click.
	leadInDuration = 100 * time.Millisecond
)

var (
	// ErrEmptyInput marks an entry with zero valid phrases after splitting.
	ErrEmptyInput = errors.New("no valid text parts")

	// ErrSampleRateMismatch marks phrases of one entry that synthesized at
	// different rates; concatenating them would produce pitched audio.
	ErrSampleRateMismatch = errors.New("sample rate mismatch between phrases")
)

// Composer turns one text entry into a single PCM buffer: it splits on the
// phrase separator, synthesizes each part through the retry controller and
// the fallback chain, and joins the parts with pause silence.
type Composer struct {
	Primary   Provider
	Fallbacks []Provider
	Retrier   *Retrier
	Pause     time.Duration
	Metrics   *observability.Metrics
}

// Compose synthesizes every phrase of text and returns the joined buffer
// and its sample rate. A failure of any phrase fails the whole entry; no
// partial result is returned.
func (c *Composer) Compose(ctx context.Context, text string, req Request) ([]byte, int, error) {
	parts := SplitPhrases(text)
	if len(parts) == 0 {
		return nil, 0, fmt.Errorf("%w in %q", ErrEmptyInput, text)
	}

	pause := c.Pause
	if pause <= 0 {
		pause = DefaultPauseDuration
	}

	var combined []byte
	sampleRate := 0
	for i, part := range parts {
		pcm, rate, err := c.synthesizePart(ctx, part, req)
		if err != nil {
			return nil, 0, fmt.Errorf("phrase %q: %w", part, err)
		}
		if sampleRate == 0 {
			sampleRate = rate
		} else if rate != sampleRate {
			return nil, 0, fmt.Errorf("%w: %d vs %d", ErrSampleRateMismatch, sampleRate, rate)
		}

		combined = append(combined, pcm...)
		if i < len(parts)-1 {
			combined = append(combined, audio.Silence(pause, sampleRate)...)
		}
	}

	// Anti-click padding at playback start.
	combined = append(audio.Silence(leadInDuration, sampleRate), combined...)
	return combined, sampleRate, nil
}

// synthesizePart runs the retry budget against the primary provider, then
// hands each fallback a single attempt through the same controller.
func (c *Composer) synthesizePart(ctx context.Context, part string, req Request) ([]byte, int, error) {
	pcm, rate, primaryErr := c.Retrier.Run(ctx, c.Primary, part, req)
	if primaryErr == nil {
		return pcm, rate, nil
	}
	if ctx.Err() != nil {
		return nil, 0, primaryErr
	}

	errs := []error{primaryErr}
	for _, fb := range c.Fallbacks {
		single := &Retrier{Retries: 1, BackoffFactor: c.Retrier.BackoffFactor, Sleep: c.Retrier.Sleep, Metrics: c.Retrier.Metrics}
		pcm, rate, err := single.Run(ctx, fb, part, req)
		if err == nil {
			log.Printf("phrase %q served by fallback provider %s", part, fb.Name())
			c.Metrics.RecordFallback(fb.Name())
			return pcm, rate, nil
		}
		errs = append(errs, err)
	}
	return nil, 0, errors.Join(errs...)
}

// SplitPhrases breaks a text entry on the phrase separator, trimming
// whitespace and dropping empty parts.
func SplitPhrases(text string) []string {
	var parts []string
	for _, p := range strings.Split(text, PhraseSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
