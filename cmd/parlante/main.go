// Command parlante generates spoken-word WAV files for every unique entry
// of a two-column word-list CSV. Files land in a directory named after the
// CSV, and entries that already have a file are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ibarra/parlante/internal/batch"
	"github.com/ibarra/parlante/internal/config"
	"github.com/ibarra/parlante/internal/httpapi"
	"github.com/ibarra/parlante/internal/observability"
	"github.com/ibarra/parlante/internal/synth"
	"github.com/ibarra/parlante/internal/voices"
)

type options struct {
	csvPath     string
	language    string
	voiceTier   string
	voicesFile  string
	pause       time.Duration
	retries     int
	backoff     float64
	concurrency int
	metricsAddr string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parlante: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "parlante: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	var pauseMS int

	flag.StringVar(&opts.language, "language", "", "language tag for synthesis (default from SYNTH_LANGUAGE)")
	flag.StringVar(&opts.voiceTier, "voice-tier", "", "fallback voice quality tier: neural or standard")
	flag.StringVar(&opts.voicesFile, "voices-file", "", "YAML file overriding the built-in voice table")
	flag.IntVar(&pauseMS, "pause-ms", 0, "pause between phrases of one entry in milliseconds")
	flag.IntVar(&opts.retries, "retries", 0, "retry budget per provider")
	flag.Float64Var(&opts.backoff, "backoff", 0, "exponential backoff factor in seconds")
	flag.IntVar(&opts.concurrency, "concurrency", 0, "parallel words (phrases of one word stay sequential)")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "optional debug listener address for /metrics")
	flag.Parse()

	if flag.NArg() != 1 {
		return options{}, fmt.Errorf("usage: parlante [flags] <csv_file>")
	}
	opts.csvPath = strings.TrimSpace(flag.Arg(0))
	if opts.csvPath == "" {
		return options{}, fmt.Errorf("csv file path is required")
	}
	if pauseMS < 0 {
		return options{}, fmt.Errorf("pause-ms must not be negative")
	}
	opts.pause = time.Duration(pauseMS) * time.Millisecond
	return opts, nil
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	applyOverrides(&cfg, opts)

	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}

	table := voices.Builtin()
	if cfg.VoicesFile != "" {
		table, err = voices.Load(cfg.VoicesFile)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	if cfg.MetricsAddr != "" {
		go func() {
			log.Printf("debug listener on %s", cfg.MetricsAddr)
			if err := httpapi.Serve(cfg.MetricsAddr); err != nil {
				log.Printf("debug listener stopped: %v", err)
			}
		}()
	}

	primary := synth.NewGeminiProvider(synth.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Voice:   cfg.GeminiVoice,
		Voices:  table,
	})

	var fallbacks []synth.Provider
	if cfg.CloudTTSEnabled {
		cloud, err := synth.NewCloudTTSProvider(ctx, table)
		if err != nil {
			log.Printf("cloud tts fallback unavailable: %v", err)
		} else {
			defer cloud.Close()
			fallbacks = append(fallbacks, cloud)
		}
	}
	if cfg.ElevenLabsAPIKey != "" && cfg.ElevenLabsVoiceID != "" {
		fallbacks = append(fallbacks, synth.NewElevenLabsProvider(synth.ElevenLabsConfig{
			APIKey:    cfg.ElevenLabsAPIKey,
			WSBaseURL: cfg.ElevenLabsWSBaseURL,
			VoiceID:   cfg.ElevenLabsVoiceID,
			ModelID:   cfg.ElevenLabsModelID,
		}))
	}

	orchestrator := &synth.Orchestrator{
		Composer: &synth.Composer{
			Primary:   primary,
			Fallbacks: fallbacks,
			Retrier:   synth.NewRetrier(cfg.Retries, cfg.BackoffFactor, metrics),
			Pause:     cfg.PauseDuration,
			Metrics:   metrics,
		},
		Metrics: metrics,
	}

	driver := &batch.Driver{
		Orchestrator: orchestrator,
		Request: synth.Request{
			Language: cfg.Language,
			Tier:     voices.Tier(cfg.VoiceTier),
		},
		Concurrency: cfg.Concurrency,
	}

	runID := uuid.NewString()[:8]
	log.Printf("run %s: processing %s (language=%s, concurrency=%d)", runID, opts.csvPath, cfg.Language, cfg.Concurrency)

	sum, err := driver.ProcessCSV(ctx, opts.csvPath)
	if err != nil {
		return err
	}
	log.Printf("run %s: complete: %d/%d files", runID, sum.Succeeded, sum.Total)
	if sum.Failed() {
		return fmt.Errorf("%d of %d items failed", sum.Total-sum.Succeeded, sum.Total)
	}
	return nil
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.language != "" {
		cfg.Language = opts.language
	}
	if opts.voiceTier != "" {
		cfg.VoiceTier = opts.voiceTier
	}
	if opts.voicesFile != "" {
		cfg.VoicesFile = opts.voicesFile
	}
	if opts.pause > 0 {
		cfg.PauseDuration = opts.pause
	}
	if opts.retries > 0 {
		cfg.Retries = opts.retries
	}
	if opts.backoff > 0 {
		cfg.BackoffFactor = opts.backoff
	}
	if opts.concurrency > 0 {
		cfg.Concurrency = opts.concurrency
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
}
