package config

import (
	"testing"
	"time"
)

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"GEMINI_API_KEY",
		"GEMINI_BASE_URL",
		"GEMINI_TTS_MODEL",
		"GEMINI_TTS_VOICE",
		"CLOUD_TTS_ENABLED",
		"ELEVENLABS_API_KEY",
		"ELEVENLABS_WS_BASE_URL",
		"ELEVENLABS_VOICE_ID",
		"ELEVENLABS_MODEL_ID",
		"SYNTH_LANGUAGE",
		"SYNTH_VOICE_TIER",
		"SYNTH_RETRIES",
		"SYNTH_BACKOFF_FACTOR",
		"SYNTH_PAUSE_DURATION",
		"SYNTH_VOICES_FILE",
		"BATCH_CONCURRENCY",
		"APP_METRICS_ADDR",
		"APP_METRICS_NAMESPACE",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-preview-tts" {
		t.Fatalf("GeminiModel = %q, want default", cfg.GeminiModel)
	}
	if cfg.GeminiVoice != "Leda" {
		t.Fatalf("GeminiVoice = %q, want Leda", cfg.GeminiVoice)
	}
	if !cfg.CloudTTSEnabled {
		t.Fatalf("CloudTTSEnabled = false, want enabled by default")
	}
	if cfg.Retries != 5 {
		t.Fatalf("Retries = %d, want 5", cfg.Retries)
	}
	if cfg.BackoffFactor != 1 {
		t.Fatalf("BackoffFactor = %v, want 1", cfg.BackoffFactor)
	}
	if cfg.PauseDuration != 500*time.Millisecond {
		t.Fatalf("PauseDuration = %v, want 500ms", cfg.PauseDuration)
	}
	if cfg.Concurrency != 1 {
		t.Fatalf("Concurrency = %d, want sequential default", cfg.Concurrency)
	}
	if cfg.Language != "es-US" {
		t.Fatalf("Language = %q, want es-US", cfg.Language)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("GEMINI_API_KEY", " secret-key ")
	t.Setenv("SYNTH_RETRIES", "3")
	t.Setenv("SYNTH_BACKOFF_FACTOR", "0.5")
	t.Setenv("SYNTH_PAUSE_DURATION", "750ms")
	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("CLOUD_TTS_ENABLED", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiAPIKey != "secret-key" {
		t.Fatalf("GeminiAPIKey = %q, want trimmed value", cfg.GeminiAPIKey)
	}
	if cfg.Retries != 3 {
		t.Fatalf("Retries = %d, want 3", cfg.Retries)
	}
	if cfg.BackoffFactor != 0.5 {
		t.Fatalf("BackoffFactor = %v, want 0.5", cfg.BackoffFactor)
	}
	if cfg.PauseDuration != 750*time.Millisecond {
		t.Fatalf("PauseDuration = %v, want 750ms", cfg.PauseDuration)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.CloudTTSEnabled {
		t.Fatalf("CloudTTSEnabled = true, want disabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"SYNTH_RETRIES", "0"},
		{"SYNTH_RETRIES", "abc"},
		{"SYNTH_BACKOFF_FACTOR", "-1"},
		{"SYNTH_PAUSE_DURATION", "-5ms"},
		{"BATCH_CONCURRENCY", "0"},
		{"CLOUD_TTS_ENABLED", "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
