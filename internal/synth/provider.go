// Package synth implements the audio synthesis pipeline: the provider
// abstraction, the retry/backoff/fallback policy, and the raw-PCM
// composition that turns one word-list entry into a playable WAV file.
package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/ibarra/parlante/internal/voices"
)

// Request carries the immutable parameters of one synthesis call.
type Request struct {
	// Language is a BCP-47-like tag. It selects both the spoken-language
	// instruction for the generative provider and the voice for the
	// dedicated-TTS fallback.
	Language string
	// Tier picks the fallback voice quality class.
	Tier voices.Tier
	// VoiceOverride, when set, replaces the table-derived voice id.
	VoiceOverride string
}

// OutcomeKind classifies one provider attempt. The retry controller acts on
// this, never on raw HTTP status codes.
type OutcomeKind int

const (
	KindSuccess OutcomeKind = iota
	KindRateLimited
	KindTransient
	KindPermanent
)

func (k OutcomeKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the tagged result of a single synthesis attempt.
type Outcome struct {
	Kind OutcomeKind

	// Set only for KindSuccess.
	PCM        []byte
	SampleRate int

	// Set only for KindRateLimited when the provider supplied a wait hint.
	RetryAfter    time.Duration
	HasRetryAfter bool

	// Set for every non-success kind.
	Err error
}

// Success builds a successful outcome carrying raw PCM and its rate.
func Success(pcm []byte, sampleRate int) Outcome {
	return Outcome{Kind: KindSuccess, PCM: pcm, SampleRate: sampleRate}
}

// RateLimited builds a rate-limit outcome. hasHint reports whether the
// provider supplied an explicit wait duration.
func RateLimited(hint time.Duration, hasHint bool, err error) Outcome {
	return Outcome{Kind: KindRateLimited, RetryAfter: hint, HasRetryAfter: hasHint, Err: err}
}

// Transient builds an outcome for recoverable network or HTTP failures.
func Transient(err error) Outcome {
	return Outcome{Kind: KindTransient, Err: err}
}

// Permanent builds an outcome that must not be retried against the same
// provider (malformed or empty response body, missing voice, and so on).
func Permanent(err error) Outcome {
	return Outcome{Kind: KindPermanent, Err: err}
}

// Provider synthesizes a single phrase. Implementations classify their own
// failures into Outcome kinds so the retry controller and composer stay
// provider-agnostic; adding a provider requires no change to either.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, phrase string, req Request) Outcome
}
