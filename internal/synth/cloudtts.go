package synth

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/ibarra/parlante/internal/audio"
	"github.com/ibarra/parlante/internal/voices"
)

const (
	// The provider is asked for a 300ms lead-in pause via SSML; trimming
	// 200ms removes the transient click at the silence boundary and leaves
	// 100ms of clean provider-side silence.
	cloudLeadInBreak = 300 * time.Millisecond
	cloudLeadInTrim  = 200 * time.Millisecond

	// Fixed output format: mono 16-bit linear PCM at 24kHz, matching the
	// generative provider's usual rate so compositions never mix rates.
	cloudSampleRate = 24000
)

// speechClient is the subset of the Cloud Text-to-Speech client the adapter
// uses; tests substitute a stub.
type speechClient interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// CloudTTSProvider synthesizes phrases through the dedicated Cloud
// Text-to-Speech service. It is the fallback when the generative provider
// exhausts its retry budget, and performs no internal retry of its own.
type CloudTTSProvider struct {
	client speechClient
	voices *voices.Table
}

func NewCloudTTSProvider(ctx context.Context, table *voices.Table, opts ...option.ClientOption) (*CloudTTSProvider, error) {
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create texttospeech client: %w", err)
	}
	if table == nil {
		table = voices.Builtin()
	}
	return &CloudTTSProvider{client: client, voices: table}, nil
}

func (p *CloudTTSProvider) Name() string { return "cloud-tts" }

func (p *CloudTTSProvider) Close() error { return p.client.Close() }

// Synthesize requests fixed-format audio for one phrase. Every failure is
// permanent for this adapter: the retry controller invokes it as a
// last-resort single shot.
func (p *CloudTTSProvider) Synthesize(ctx context.Context, phrase string, req Request) Outcome {
	tier := req.Tier
	if tier == "" {
		tier = voices.TierNeural
	}

	voiceID := req.VoiceOverride
	gender := texttospeechpb.SsmlVoiceGender_SSML_VOICE_GENDER_UNSPECIFIED
	if voiceID == "" {
		v, err := p.voices.Voice(req.Language, tier)
		if err != nil {
			return Permanent(err)
		}
		voiceID = v.ID
		gender = ssmlGender(v.Gender)
	}

	resp, err := p.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Ssml{Ssml: leadInSSML(phrase)},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: req.Language,
			Name:         voiceID,
			SsmlGender:   gender,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: cloudSampleRate,
		},
	})
	if err != nil {
		return Permanent(fmt.Errorf("cloud tts synthesize: %w", err))
	}

	pcm := stripWAVHeader(resp.GetAudioContent())
	pcm = audio.TrimLeading(pcm, cloudLeadInTrim, cloudSampleRate)
	if len(pcm) == 0 {
		return Permanent(fmt.Errorf("cloud tts returned no audio beyond the trimmed lead-in"))
	}
	return Success(pcm, cloudSampleRate)
}

// leadInSSML wraps the phrase in a directive asking the provider itself to
// start with a short pause, so the boundary click lands inside audio the
// adapter will trim.
func leadInSSML(phrase string) string {
	return fmt.Sprintf(`<speak><break time="%dms"/>%s</speak>`,
		cloudLeadInBreak.Milliseconds(), escapeSSML(phrase))
}

func escapeSSML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func ssmlGender(g string) texttospeechpb.SsmlVoiceGender {
	switch strings.ToLower(g) {
	case "female":
		return texttospeechpb.SsmlVoiceGender_FEMALE
	case "male":
		return texttospeechpb.SsmlVoiceGender_MALE
	default:
		return texttospeechpb.SsmlVoiceGender_SSML_VOICE_GENDER_UNSPECIFIED
	}
}

// stripWAVHeader removes the 44-byte RIFF header LINEAR16 responses carry,
// leaving raw PCM for composition.
func stripWAVHeader(b []byte) []byte {
	if len(b) >= 44 && bytes.HasPrefix(b, []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")) {
		return b[44:]
	}
	return b
}
