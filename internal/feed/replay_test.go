package feed

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"market-signal-engine/internal/odds"
)

func writeReplay(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replay.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplayBatchesByTimestamp(t *testing.T) {
	body := `[
		{"gameId":"game-1","bookmaker":"draftkings","market":"moneyline","side":"home","americanOdds":110,"observedAt":"2026-01-15T18:00:00Z"},
		{"gameId":"game-1","bookmaker":"fanduel","market":"moneyline","side":"away","americanOdds":105,"observedAt":"2026-01-15T18:00:00Z"},
		{"gameId":"game-1","bookmaker":"draftkings","market":"moneyline","side":"home","americanOdds":105,"observedAt":"2026-01-15T18:05:00Z"}
	]`
	p, err := NewReplayProvider(writeReplay(t, body), 1000)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	first, err := p.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Fatalf("first batch has %d updates, want 2 sharing a timestamp", len(first))
	}
	if first[0].Quote().Market != odds.MarketMoneyline {
		t.Errorf("Market = %s, want moneyline", first[0].Quote().Market)
	}

	second, err := p.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 || second[0].AmericanOdds != 105 {
		t.Errorf("second batch = %+v, want the single later update", second)
	}

	if _, err := p.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted replay should return io.EOF, got %v", err)
	}
}

func TestReplayRespectsContext(t *testing.T) {
	body := `[
		{"gameId":"game-1","bookmaker":"draftkings","market":"spread","side":"home","line":-2.5,"americanOdds":-110,"observedAt":"2026-01-15T18:00:00Z"},
		{"gameId":"game-1","bookmaker":"draftkings","market":"spread","side":"home","line":-3.0,"americanOdds":-110,"observedAt":"2026-01-15T18:05:00Z"}
	]`
	// One batch per 10s: the second Next must block on the limiter and bail
	// out when the context dies.
	p, err := NewReplayProvider(writeReplay(t, body), 0.1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Next(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Next(ctx); err == nil {
		t.Error("want a context error while rate limited, got nil")
	}
}

func TestReplayBadFile(t *testing.T) {
	if _, err := NewReplayProvider(writeReplay(t, "{not json"), 1); err == nil {
		t.Error("malformed recording should fail at construction")
	}
	if _, err := NewReplayProvider("/nonexistent/replay.json", 1); err == nil {
		t.Error("missing file should fail at construction")
	}
}

func TestUpdateQuoteCarriesLine(t *testing.T) {
	line := -2.5
	u := Update{
		GameID:       "game-1",
		Bookmaker:    "draftkings",
		Market:       odds.MarketSpread,
		Side:         odds.SideHome,
		Line:         &line,
		AmericanOdds: -110,
		ObservedAt:   time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC),
	}

	q := u.Quote()
	if q.Line == nil || *q.Line != -2.5 {
		t.Errorf("Line = %v, want -2.5", q.Line)
	}
	if q.Bookmaker != "draftkings" || q.AmericanOdds != -110 {
		t.Errorf("quote fields lost: %+v", q)
	}
}
