package synth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ElevenLabsConfig configures the optional third provider.
type ElevenLabsConfig struct {
	APIKey    string
	WSBaseURL string
	VoiceID   string
	ModelID   string
}

// ElevenLabsProvider streams one phrase through the ElevenLabs stream-input
// websocket and collects the returned PCM. It is wired as a last-resort
// fallback behind the dedicated-TTS adapter; like that adapter it performs
// no internal retry and reports every failure as permanent.
type ElevenLabsProvider struct {
	cfg    ElevenLabsConfig
	dialer *websocket.Dialer
}

func NewElevenLabsProvider(cfg ElevenLabsConfig) *ElevenLabsProvider {
	if strings.TrimSpace(cfg.WSBaseURL) == "" {
		cfg.WSBaseURL = "wss://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	return &ElevenLabsProvider{cfg: cfg, dialer: websocket.DefaultDialer}
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, phrase string, req Request) Outcome {
	voiceID := p.cfg.VoiceID
	if req.VoiceOverride != "" {
		voiceID = req.VoiceOverride
	}
	if strings.TrimSpace(voiceID) == "" {
		return Permanent(fmt.Errorf("elevenlabs voice id is not configured"))
	}

	u, err := url.Parse(strings.TrimRight(p.cfg.WSBaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(voiceID) + "/stream-input")
	if err != nil {
		return Permanent(fmt.Errorf("build stream url: %w", err))
	}
	q := u.Query()
	q.Set("model_id", p.cfg.ModelID)
	// Raw PCM at the pipeline's standard rate, so compositions never mix
	// sample rates across providers.
	q.Set("output_format", "pcm_24000")
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("xi-api-key", p.cfg.APIKey)

	conn, _, err := p.dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return Permanent(fmt.Errorf("dial tts websocket: %w", err))
	}
	defer conn.Close()

	// Prime the stream, send the phrase, then close input so the provider
	// flushes everything it has.
	msgs := []map[string]any{
		{"text": " "},
		{"text": phrase + " ", "try_trigger_generation": true},
		{"text": ""},
	}
	for _, msg := range msgs {
		if err := conn.WriteJSON(msg); err != nil {
			return Permanent(fmt.Errorf("send text: %w", err))
		}
	}

	pcm, err := collectStreamAudio(ctx, conn)
	if err != nil {
		return Permanent(err)
	}
	if len(pcm) == 0 {
		return Permanent(fmt.Errorf("elevenlabs returned no audio"))
	}
	return Success(pcm, 24000)
}

func collectStreamAudio(ctx context.Context, conn *websocket.Conn) ([]byte, error) {
	deadline := time.Now().Add(60 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	var pcm []byte
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// A clean close after audio means the stream simply ended
			// without an explicit final marker.
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && len(pcm) > 0 {
				return pcm, nil
			}
			return nil, fmt.Errorf("read stream: %w", err)
		}

		var msg struct {
			Audio   string `json:"audio"`
			IsFinal bool   `json:"isFinal"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Error != "" {
			return nil, fmt.Errorf("elevenlabs stream error: %s", msg.Error)
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, fmt.Errorf("decode audio chunk: %w", err)
			}
			pcm = append(pcm, chunk...)
		}
		if msg.IsFinal {
			return pcm, nil
		}
	}
}
