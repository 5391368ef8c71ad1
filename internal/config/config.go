package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"market-signal-engine/internal/edge"
)

// Defaults for configuration values.
const (
	DefaultPollInterval       = 30 * time.Second
	DefaultDBPath             = "/data/snapshots.db"
	DefaultPort               = "8080"
	DefaultMinArbROIPct       = 0.5
	DefaultMinMiddleGap       = 1.0
	DefaultBankroll           = 100.0
	DefaultSteamPoints        = 1.0
	DefaultSteamWindow        = 5 * time.Minute
	DefaultRLMPublicThreshold = 65.0
	DefaultTrendPoints        = 0.5
	DefaultAlertCooldown      = 5 * time.Minute
	DefaultCleanupInterval    = 10 * time.Minute
	DefaultRetention          = 7 * 24 * time.Hour
)

// Config holds all application configuration.
type Config struct {
	FeedURL      string
	ReplayFile   string
	PollInterval time.Duration
	DBPath       string
	Port         string

	// Scanner settings
	MinArbROIPct float64
	MinMiddleGap float64
	Bankroll     float64

	// Movement thresholds
	SteamPoints        float64
	SteamWindow        time.Duration
	RLMPublicThreshold float64
	TrendPoints        float64

	// Alerting
	AlertCooldown    time.Duration
	CleanupInterval  time.Duration
	TelegramToken    string
	TelegramChatID   int64
	Retention        time.Duration

	// Scoring overrides loaded from the optional YAML file.
	Weights    edge.Weights
	MajorBooks []string
}

// Load reads configuration from environment variables (and .env file if present).
func Load() Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := Config{
		FeedURL:      os.Getenv("FEED_URL"),
		ReplayFile:   os.Getenv("REPLAY_FILE"),
		PollInterval: DefaultPollInterval,
		DBPath:       DefaultDBPath,
		Port:         DefaultPort,

		MinArbROIPct: DefaultMinArbROIPct,
		MinMiddleGap: DefaultMinMiddleGap,
		Bankroll:     DefaultBankroll,

		SteamPoints:        DefaultSteamPoints,
		SteamWindow:        DefaultSteamWindow,
		RLMPublicThreshold: DefaultRLMPublicThreshold,
		TrendPoints:        DefaultTrendPoints,

		AlertCooldown:   DefaultAlertCooldown,
		CleanupInterval: DefaultCleanupInterval,
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		Retention:       DefaultRetention,

		Weights: edge.DefaultWeights(),
	}

	if v := os.Getenv("POLL_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.PollInterval = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("MIN_ARB_ROI_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinArbROIPct = f
		}
	}

	if v := os.Getenv("MIN_MIDDLE_GAP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinMiddleGap = f
		}
	}

	if v := os.Getenv("BANKROLL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bankroll = f
		}
	}

	if v := os.Getenv("STEAM_POINTS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SteamPoints = f
		}
	}

	if v := os.Getenv("STEAM_WINDOW_SEC"); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.SteamWindow = time.Duration(s) * time.Second
		}
	}

	if v := os.Getenv("RLM_PUBLIC_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RLMPublicThreshold = f
		}
	}

	if v := os.Getenv("ALERT_COOLDOWN_SEC"); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.AlertCooldown = time.Duration(s) * time.Second
		}
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = id
		}
	}

	if v := os.Getenv("RETENTION_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			cfg.Retention = time.Duration(h) * time.Hour
		}
	}

	if path := os.Getenv("SCORING_FILE"); path != "" {
		if err := applyScoringFile(&cfg, path); err != nil {
			fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
		}
	}

	return cfg
}

// Validate checks that configuration values are within acceptable ranges.
func Validate(cfg Config) error {
	if cfg.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("POLL_INTERVAL_MS must be at least 100ms, got %v", cfg.PollInterval)
	}
	if cfg.MinArbROIPct < 0 {
		return fmt.Errorf("MIN_ARB_ROI_PCT must be non-negative, got %f", cfg.MinArbROIPct)
	}
	if cfg.MinMiddleGap <= 0 {
		return fmt.Errorf("MIN_MIDDLE_GAP must be positive, got %f", cfg.MinMiddleGap)
	}
	if cfg.Bankroll <= 0 {
		return fmt.Errorf("BANKROLL must be positive, got %f", cfg.Bankroll)
	}
	if cfg.SteamPoints <= 0 {
		return fmt.Errorf("STEAM_POINTS must be positive, got %f", cfg.SteamPoints)
	}
	if cfg.RLMPublicThreshold < 50 || cfg.RLMPublicThreshold > 100 {
		return fmt.Errorf("RLM_PUBLIC_THRESHOLD must be between 50 and 100, got %f", cfg.RLMPublicThreshold)
	}
	if err := cfg.Weights.Validate(); err != nil {
		return err
	}
	return nil
}
