package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ibarra/parlante/internal/voices"
)

// GeminiConfig configures the generative speech provider.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
	Voices  *voices.Table
}

// GeminiProvider synthesizes phrases through the Gemini generative speech
// endpoint. It is the pipeline's primary provider.
type GeminiProvider struct {
	cfg    GeminiConfig
	client *http.Client
}

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-2.5-flash-preview-tts"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "Leda"
	}
	if cfg.Voices == nil {
		cfg.Voices = voices.Builtin()
	}
	return &GeminiProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities"`
	SpeechConfig       geminiSpeechConfig `json:"speechConfig"`
}

type geminiSpeechConfig struct {
	VoiceConfig geminiVoiceConfig `json:"voiceConfig"`
}

type geminiVoiceConfig struct {
	PrebuiltVoiceConfig geminiPrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type geminiPrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Synthesize asks the generative model to speak the phrase in the request's
// language. The response carries base64 PCM tagged with a MIME type whose
// rate parameter is the only source of the sample rate.
func (p *GeminiProvider) Synthesize(ctx context.Context, phrase string, req Request) Outcome {
	voice := p.cfg.Voice
	if req.VoiceOverride != "" {
		voice = req.VoiceOverride
	}
	payload := geminiGenerateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: p.instruction(phrase, req.Language)}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: geminiSpeechConfig{
				VoiceConfig: geminiVoiceConfig{
					PrebuiltVoiceConfig: geminiPrebuiltVoice{VoiceName: voice},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Permanent(fmt.Errorf("marshal request: %w", err))
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1beta/models/" + p.cfg.Model + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Permanent(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// The key travels in a header, never in the URL, so it cannot leak
	// through request logging.
	httpReq.Header.Set("x-goog-api-key", p.cfg.APIKey)

	res, err := p.client.Do(httpReq)
	if err != nil {
		return Transient(fmt.Errorf("send request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		hint, hasHint := parseRetryAfter(res.Header.Get("Retry-After"))
		return RateLimited(hint, hasHint, fmt.Errorf("gemini http status 429"))
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Transient(fmt.Errorf("gemini http status %d: %s", res.StatusCode, excerpt))
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Transient(fmt.Errorf("read response: %w", err))
	}

	var parsed geminiGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Permanent(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Permanent(fmt.Errorf("no candidates in response"))
	}
	inline := parsed.Candidates[0].Content.Parts[0].InlineData
	if inline == nil || inline.Data == "" {
		return Permanent(fmt.Errorf("no audio data in response"))
	}
	if !strings.HasPrefix(inline.MimeType, "audio/") {
		return Permanent(fmt.Errorf("unexpected mime type %q", inline.MimeType))
	}
	rate, err := sampleRateFromMime(inline.MimeType)
	if err != nil {
		return Permanent(err)
	}
	pcm, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return Permanent(fmt.Errorf("decode audio payload: %w", err))
	}
	if len(pcm) == 0 {
		return Permanent(fmt.Errorf("empty audio payload"))
	}
	return Success(pcm, rate)
}

// instruction embeds the target language name and the literal phrase into
// the prompt sent to the generative model.
func (p *GeminiProvider) instruction(phrase, language string) string {
	if strings.TrimSpace(language) == "" {
		return phrase
	}
	return fmt.Sprintf("Say the following in %s: %s", p.cfg.Voices.LanguageName(language), phrase)
}

// sampleRateFromMime extracts the rate parameter from a MIME type such as
// "audio/L16;codec=pcm;rate=24000".
func sampleRateFromMime(mime string) (int, error) {
	_, after, found := strings.Cut(mime, "rate=")
	if !found {
		return 0, fmt.Errorf("mime type %q carries no rate parameter", mime)
	}
	if i := strings.IndexByte(after, ';'); i >= 0 {
		after = after[:i]
	}
	rate, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("mime type %q carries malformed rate parameter", mime)
	}
	return rate, nil
}

// parseRetryAfter understands the integer-seconds form of Retry-After.
// HTTP-date values are treated as an absent hint.
func parseRetryAfter(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
