package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ProjectID        string
	TelegramBotToken string
	Port             string

	// Scraping backend selection: "inline", "delegate" or "tunnel".
	ScraperBackend string
	DelegateURL    string

	// Endpoint resolution for the tunnel backend.
	FallbackEndpointURL string
	EndpointFreshness   time.Duration

	// Sweep pacing: pause for SweepPause after every SweepPaceEvery records.
	SweepPaceEvery int
	SweepPause     time.Duration

	// Whether a tracking may be created from a partial extraction (title found,
	// price unknown). Default is the strict "no estimates, no fake prices" policy.
	AllowPartialTracking bool

	HistoryDisplayLimit int
}

func Load() (*Config, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
	}

	botToken := os.Getenv("TG_BOT_TOKEN")
	if botToken == "" {
		slog.Warn("TG_BOT_TOKEN not set, Telegram replies and notifications will be skipped")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	backend := os.Getenv("SCRAPER_BACKEND")
	if backend == "" {
		backend = "inline"
	}
	switch backend {
	case "inline", "delegate", "tunnel":
	default:
		return nil, fmt.Errorf("invalid SCRAPER_BACKEND %q: must be inline, delegate or tunnel", backend)
	}

	delegateURL := os.Getenv("DELEGATE_URL")
	if backend == "delegate" && delegateURL == "" {
		return nil, fmt.Errorf("DELEGATE_URL is required when SCRAPER_BACKEND=delegate")
	}

	fallbackEndpoint := os.Getenv("FALLBACK_ENDPOINT_URL")
	if fallbackEndpoint == "" {
		fallbackEndpoint = delegateURL
	}
	if backend == "tunnel" && fallbackEndpoint == "" {
		return nil, fmt.Errorf("FALLBACK_ENDPOINT_URL is required when SCRAPER_BACKEND=tunnel")
	}

	freshnessStr := os.Getenv("ENDPOINT_FRESHNESS_WINDOW")
	if freshnessStr == "" {
		freshnessStr = "10m"
	}
	freshness, err := time.ParseDuration(freshnessStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ENDPOINT_FRESHNESS_WINDOW %q: %w", freshnessStr, err)
	}

	sweepPaceEvery := 5
	if v := os.Getenv("SWEEP_PACE_EVERY"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid SWEEP_PACE_EVERY %q", v)
		}
		sweepPaceEvery = parsed
	}

	sweepPauseStr := os.Getenv("SWEEP_PAUSE")
	if sweepPauseStr == "" {
		sweepPauseStr = "2s"
	}
	sweepPause, err := time.ParseDuration(sweepPauseStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_PAUSE %q: %w", sweepPauseStr, err)
	}

	allowPartial := false
	if v := os.Getenv("ALLOW_PARTIAL_TRACKING"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOW_PARTIAL_TRACKING %q: %w", v, err)
		}
		allowPartial = parsed
	}

	historyLimit := 15
	if v := os.Getenv("HISTORY_DISPLAY_LIMIT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid HISTORY_DISPLAY_LIMIT %q", v)
		}
		historyLimit = parsed
	}

	return &Config{
		ProjectID:            projectID,
		TelegramBotToken:     botToken,
		Port:                 port,
		ScraperBackend:       backend,
		DelegateURL:          delegateURL,
		FallbackEndpointURL:  fallbackEndpoint,
		EndpointFreshness:    freshness,
		SweepPaceEvery:       sweepPaceEvery,
		SweepPause:           sweepPause,
		AllowPartialTracking: allowPartial,
		HistoryDisplayLimit:  historyLimit,
	}, nil
}
