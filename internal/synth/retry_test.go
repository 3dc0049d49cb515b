package synth

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

type stubProvider struct {
	name     string
	calls    int
	outcomes []Outcome
}

func (p *stubProvider) Name() string {
	if p.name == "" {
		return "stub"
	}
	return p.name
}

func (p *stubProvider) Synthesize(_ context.Context, _ string, _ Request) Outcome {
	i := p.calls
	p.calls++
	if i >= len(p.outcomes) {
		return p.outcomes[len(p.outcomes)-1]
	}
	return p.outcomes[i]
}

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return nil
}

func TestRetrierReturnsFirstSuccess(t *testing.T) {
	rec := &sleepRecorder{}
	p := &stubProvider{outcomes: []Outcome{Success([]byte{1, 2}, 24000)}}
	r := &Retrier{Retries: 5, BackoffFactor: 1, Sleep: rec.sleep}

	pcm, rate, err := r.Run(context.Background(), p, "hola", Request{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !bytes.Equal(pcm, []byte{1, 2}) || rate != 24000 {
		t.Fatalf("Run() = (%v, %d), want ([1 2], 24000)", pcm, rate)
	}
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}
	if len(rec.slept) != 0 {
		t.Fatalf("slept = %v, want none", rec.slept)
	}
}

func TestRetrierHonorsRetryAfterHintExactly(t *testing.T) {
	rec := &sleepRecorder{}
	p := &stubProvider{outcomes: []Outcome{
		RateLimited(5*time.Second, true, errors.New("429")),
		Success([]byte{9}, 24000),
	}}
	r := &Retrier{Retries: 5, BackoffFactor: 1, Sleep: rec.sleep}

	if _, _, err := r.Run(context.Background(), p, "hola", Request{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.slept) != 1 || rec.slept[0] != 5*time.Second {
		t.Fatalf("slept = %v, want exactly [5s]", rec.slept)
	}
}

func TestRetrierRateLimitBackoffFloorWithoutHint(t *testing.T) {
	rec := &sleepRecorder{}
	p := &stubProvider{outcomes: []Outcome{RateLimited(0, false, errors.New("429"))}}
	r := &Retrier{Retries: 5, BackoffFactor: 1, Sleep: rec.sleep}

	_, _, err := r.Run(context.Background(), p, "hola", Request{})
	if err == nil {
		t.Fatalf("Run() expected error after exhausting retries")
	}
	if p.calls != 5 {
		t.Fatalf("calls = %d, want 5", p.calls)
	}
	// max(2, 2^i) seconds for i = 0..3; no sleep after the final attempt.
	want := []time.Duration{2 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(rec.slept) != len(want) {
		t.Fatalf("slept = %v, want %v", rec.slept, want)
	}
	for i := range want {
		if rec.slept[i] != want[i] {
			t.Fatalf("slept[%d] = %v, want %v", i, rec.slept[i], want[i])
		}
	}
}

func TestRetrierTransientBackoffHasNoFloor(t *testing.T) {
	rec := &sleepRecorder{}
	p := &stubProvider{outcomes: []Outcome{Transient(errors.New("conn reset"))}}
	r := &Retrier{Retries: 5, BackoffFactor: 1, Sleep: rec.sleep}

	if _, _, err := r.Run(context.Background(), p, "hola", Request{}); err == nil {
		t.Fatalf("Run() expected error after exhausting retries")
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(rec.slept) != len(want) {
		t.Fatalf("slept = %v, want %v", rec.slept, want)
	}
	for i := range want {
		if rec.slept[i] != want[i] {
			t.Fatalf("slept[%d] = %v, want %v", i, rec.slept[i], want[i])
		}
	}
}

func TestRetrierPermanentFailsImmediately(t *testing.T) {
	rec := &sleepRecorder{}
	permErr := errors.New("empty audio payload")
	p := &stubProvider{outcomes: []Outcome{Permanent(permErr)}}
	r := &Retrier{Retries: 5, BackoffFactor: 1, Sleep: rec.sleep}

	_, _, err := r.Run(context.Background(), p, "hola", Request{})
	if err == nil || !errors.Is(err, permErr) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, permErr)
	}
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on permanent failure)", p.calls)
	}
	if len(rec.slept) != 0 {
		t.Fatalf("slept = %v, want none", rec.slept)
	}
}

func TestRetrierStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &stubProvider{outcomes: []Outcome{Transient(errors.New("down"))}}
	r := &Retrier{
		Retries:       5,
		BackoffFactor: 1,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	_, _, err := r.Run(ctx, p, "hola", Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}
}
