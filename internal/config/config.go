package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the audio generation tool.
type Config struct {
	// Primary provider (generative speech API).
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	GeminiVoice   string

	// Secondary provider (dedicated text-to-speech service). Credentials
	// come from the environment the client library already understands.
	CloudTTSEnabled bool

	// Optional third provider.
	ElevenLabsAPIKey    string
	ElevenLabsWSBaseURL string
	ElevenLabsVoiceID   string
	ElevenLabsModelID   string

	// Synthesis policy.
	Language      string
	VoiceTier     string
	Retries       int
	BackoffFactor float64
	PauseDuration time.Duration

	// Batch driver.
	Concurrency int
	VoicesFile  string

	// Optional debug listener exposing /metrics and /healthz.
	MetricsAddr      string
	MetricsNamespace string
}

// Load reads environment variables and applies safe defaults. Flags may
// override individual fields afterwards.
func Load() (Config, error) {
	cfg := Config{
		GeminiAPIKey:        trimmedEnv("GEMINI_API_KEY"),
		GeminiBaseURL:       envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:         envOrDefault("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiVoice:         envOrDefault("GEMINI_TTS_VOICE", "Leda"),
		CloudTTSEnabled:     true,
		ElevenLabsAPIKey:    trimmedEnv("ELEVENLABS_API_KEY"),
		ElevenLabsWSBaseURL: envOrDefault("ELEVENLABS_WS_BASE_URL", "wss://api.elevenlabs.io"),
		ElevenLabsVoiceID:   trimmedEnv("ELEVENLABS_VOICE_ID"),
		ElevenLabsModelID:   envOrDefault("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		Language:            envOrDefault("SYNTH_LANGUAGE", "es-US"),
		VoiceTier:           envOrDefault("SYNTH_VOICE_TIER", "neural"),
		Retries:             5,
		BackoffFactor:       1,
		PauseDuration:       500 * time.Millisecond,
		Concurrency:         1,
		VoicesFile:          trimmedEnv("SYNTH_VOICES_FILE"),
		MetricsAddr:         trimmedEnv("APP_METRICS_ADDR"),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "parlante"),
	}

	var err error
	cfg.CloudTTSEnabled, err = boolFromEnv("CLOUD_TTS_ENABLED", cfg.CloudTTSEnabled)
	if err != nil {
		return Config{}, err
	}
	cfg.Retries, err = intFromEnv("SYNTH_RETRIES", cfg.Retries)
	if err != nil {
		return Config{}, err
	}
	cfg.BackoffFactor, err = floatFromEnv("SYNTH_BACKOFF_FACTOR", cfg.BackoffFactor)
	if err != nil {
		return Config{}, err
	}
	cfg.PauseDuration, err = durationFromEnv("SYNTH_PAUSE_DURATION", cfg.PauseDuration)
	if err != nil {
		return Config{}, err
	}
	cfg.Concurrency, err = intFromEnv("BATCH_CONCURRENCY", cfg.Concurrency)
	if err != nil {
		return Config{}, err
	}

	if cfg.Retries <= 0 {
		return Config{}, fmt.Errorf("SYNTH_RETRIES must be positive")
	}
	if cfg.BackoffFactor <= 0 {
		return Config{}, fmt.Errorf("SYNTH_BACKOFF_FACTOR must be positive")
	}
	if cfg.PauseDuration < 0 {
		return Config{}, fmt.Errorf("SYNTH_PAUSE_DURATION must not be negative")
	}
	if cfg.Concurrency <= 0 {
		return Config{}, fmt.Errorf("BATCH_CONCURRENCY must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
