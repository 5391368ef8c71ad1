package movement

import (
	"time"

	"market-signal-engine/internal/history"
	"market-signal-engine/internal/mathutil"
	"market-signal-engine/internal/odds"
)

// Trend labels the net direction of a line since open.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Signal is a read-side projection over one history: it is recomputed from
// the stored snapshot sequence on every append and never persisted, so it can
// always be discarded and rebuilt.
type Signal struct {
	GameID                string
	Market                odds.Market
	TotalMovement         float64 // current minus opening line
	RecentMovement        float64 // current minus the 75th-percentile-index snapshot
	Volatility            float64 // stddev of successive deltas across the full history
	IsSteamMove           bool
	IsReverseLineMovement bool
	Trend                 Trend
	SnapshotCount         int
}

// PublicBetting is the externally supplied public-money split for one side.
type PublicBetting struct {
	Side    odds.Side
	Percent float64 // 0-100, share of public bets on Side
}

// Config holds the detection thresholds.
type Config struct {
	SteamPoints        float64       // minimum one-step move to qualify as steam
	SteamWindow        time.Duration // maximum gap between the two snapshots
	RLMPublicThreshold float64       // public % above which RLM can trigger
	TrendPoints        float64       // dead zone around zero for trend direction
}

// DefaultConfig returns the standard thresholds: a 1.0 point jump inside
// 5 minutes is steam, RLM needs a >65% public majority, trend needs more
// than half a point of net movement.
func DefaultConfig() Config {
	return Config{
		SteamPoints:        1.0,
		SteamWindow:        5 * time.Minute,
		RLMPublicThreshold: 65,
		TrendPoints:        0.5,
	}
}

// Compute derives the movement signal for one history. Fewer than two
// snapshots is a valid "no movement detected yet" state and yields a neutral
// signal, not an error. public may be nil when no betting-split feed exists.
func Compute(snaps []history.Snapshot, market odds.Market, public *PublicBetting, cfg Config) Signal {
	sig := Signal{
		Market:        market,
		Trend:         TrendStable,
		SnapshotCount: len(snaps),
	}
	if len(snaps) > 0 {
		sig.GameID = snaps[0].GameID
	}
	if len(snaps) < 2 {
		return sig
	}

	opening := snaps[0].Value(market)
	current := snaps[len(snaps)-1].Value(market)
	previous := snaps[len(snaps)-2]

	sig.TotalMovement = current - opening
	sig.RecentMovement = current - snaps[recentIndex(len(snaps))].Value(market)
	sig.Volatility = mathutil.Stddev(successiveDeltas(snaps, market))

	// Steam is judged strictly against the immediately preceding snapshot,
	// not the opening line.
	step := current - previous.Value(market)
	elapsed := snaps[len(snaps)-1].Timestamp.Sub(previous.Timestamp)
	if abs(step) >= cfg.SteamPoints && elapsed < cfg.SteamWindow {
		sig.IsSteamMove = true
	}

	if public != nil && public.Percent > cfg.RLMPublicThreshold {
		sig.IsReverseLineMovement = movesAgainstPublic(sig.TotalMovement, public.Side)
	}

	if sig.TotalMovement > cfg.TrendPoints {
		sig.Trend = TrendUp
	} else if sig.TotalMovement < -cfg.TrendPoints {
		sig.Trend = TrendDown
	}

	return sig
}

// recentIndex picks the snapshot the recent-movement window starts from:
// the last 25% of history, never fewer than one step back.
func recentIndex(n int) int {
	window := n / 4
	if window < 1 {
		window = 1
	}
	return n - 1 - window
}

func successiveDeltas(snaps []history.Snapshot, market odds.Market) []float64 {
	deltas := make([]float64, 0, len(snaps)-1)
	for i := 1; i < len(snaps); i++ {
		deltas = append(deltas, snaps[i].Value(market)-snaps[i-1].Value(market))
	}
	return deltas
}

// movesAgainstPublic reports whether the net line movement opposes the side
// the public majority is backing. Public money on the home side or the under
// pushes the tracked value down; money on the away side or the over pushes it
// up. Movement in the opposite direction of that pressure is the sharp tell.
func movesAgainstPublic(totalMovement float64, side odds.Side) bool {
	if totalMovement == 0 {
		return false
	}

	var pressure float64
	switch side {
	case odds.SideHome, odds.SideUnder:
		pressure = -1
	case odds.SideAway, odds.SideOver:
		pressure = 1
	default:
		return false
	}

	return totalMovement*pressure < 0
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
