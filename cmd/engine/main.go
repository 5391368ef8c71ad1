package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-signal-engine/internal/alerts"
	"market-signal-engine/internal/config"
	"market-signal-engine/internal/engine"
	"market-signal-engine/internal/feed"
	"market-signal-engine/internal/history"
	"market-signal-engine/internal/metrics"
)

func main() {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("Feed setup failed: %v", err)
	}
	defer provider.Close()

	notifier := alerts.NewNotifier(cfg.AlertCooldown)

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		sink, err := alerts.NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("Telegram disabled: %v", err)
		} else {
			notifier.SetSink(sink)
			log.Printf("Telegram alerts enabled (chat %d)", cfg.TelegramChatID)
		}
	}

	// Snapshot archive; the engine runs in-memory-only when sqlite is
	// unavailable.
	store := history.NewStore()
	var archive *history.Archive
	if cfg.DBPath != "" {
		archive, err = history.NewArchive(cfg.DBPath)
		if err != nil {
			log.Printf("Archive disabled: %v", err)
		} else {
			defer archive.Close()
			if pruned, err := archive.PruneBefore(time.Now().Add(-cfg.Retention)); err != nil {
				log.Printf("Archive prune failed: %v", err)
			} else if pruned > 0 {
				log.Printf("Pruned %d archived snapshots older than %s", pruned, cfg.Retention)
			}
			store, err = history.NewStoreWithArchive(archive)
			if err != nil {
				log.Fatalf("Archive replay failed: %v", err)
			}
		}
	}

	eng := engine.New(provider, notifier, store, cfg)

	notifier.LogStartup(fmt.Sprintf(" roi=%.2f%% gap=%.1f bankroll=$%.0f steam=%.1fpt/%s rlm>%.0f%% cooldown=%s db=%s",
		cfg.MinArbROIPct, cfg.MinMiddleGap, cfg.Bankroll,
		cfg.SteamPoints, cfg.SteamWindow, cfg.RLMPublicThreshold,
		cfg.AlertCooldown, cfg.DBPath))

	srv := metrics.StartServer(cfg.Port, func(ctx context.Context) error {
		if archive != nil {
			return archive.Ping(ctx)
		}
		return nil
	})
	log.Printf("Metrics server listening on :%s", cfg.Port)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	if err := eng.Run(ctx); err != nil {
		log.Printf("Engine error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildProvider picks the quote source: a replay file when configured,
// otherwise the supplier websocket.
func buildProvider(cfg config.Config) (feed.Provider, error) {
	if cfg.ReplayFile != "" {
		batchesPerSecond := 1.0 / cfg.PollInterval.Seconds()
		p, err := feed.NewReplayProvider(cfg.ReplayFile, batchesPerSecond)
		if err != nil {
			return nil, err
		}
		log.Printf("Replaying %s", cfg.ReplayFile)
		return p, nil
	}

	if cfg.FeedURL == "" {
		return nil, fmt.Errorf("set FEED_URL or REPLAY_FILE")
	}
	return feed.NewWSProvider(cfg.FeedURL), nil
}
