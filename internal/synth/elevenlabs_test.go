package synth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestElevenLabsCollectsChunksUntilFinal(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotKey string
	var gotFormat string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotFormat = r.URL.Query().Get("output_format")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		// Drain the prime/text/close-input messages.
		for i := 0; i < 3; i++ {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.Errorf("read client message: %v", err)
				return
			}
		}
		conn.WriteJSON(map[string]any{"audio": base64.StdEncoding.EncodeToString([]byte{1, 2})})
		conn.WriteJSON(map[string]any{"audio": base64.StdEncoding.EncodeToString([]byte{3, 4}), "isFinal": true})
	}))
	defer srv.Close()

	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "xi-key", WSBaseURL: wsURL(srv), VoiceID: "voice-1"})
	out := p.Synthesize(context.Background(), "hola", Request{Language: "es-US"})

	if out.Kind != KindSuccess {
		t.Fatalf("outcome = %v (%v), want success", out.Kind, out.Err)
	}
	if out.SampleRate != 24000 {
		t.Fatalf("sample rate = %d, want 24000", out.SampleRate)
	}
	if string(out.PCM) != string([]byte{1, 2, 3, 4}) {
		t.Fatalf("pcm = %v, want chunks in order", out.PCM)
	}
	if gotKey != "xi-key" {
		t.Fatalf("api key header = %q, want xi-key", gotKey)
	}
	if gotFormat != "pcm_24000" {
		t.Fatalf("output_format = %q, want pcm_24000", gotFormat)
	}
}

func TestElevenLabsStreamErrorIsPermanent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for i := 0; i < 3; i++ {
			conn.ReadMessage()
		}
		conn.WriteJSON(map[string]any{"error": "voice not found"})
	}))
	defer srv.Close()

	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "k", WSBaseURL: wsURL(srv), VoiceID: "missing"})
	if out := p.Synthesize(context.Background(), "hola", Request{}); out.Kind != KindPermanent {
		t.Fatalf("outcome = %v, want permanent", out.Kind)
	}
}

func TestElevenLabsRequiresVoiceID(t *testing.T) {
	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "k"})
	if out := p.Synthesize(context.Background(), "hola", Request{}); out.Kind != KindPermanent {
		t.Fatalf("outcome = %v, want permanent when no voice configured", out.Kind)
	}
}
