// Package engine wires the feed, the history store, and the analyzers into
// one polling loop, and exposes the same computations as plain methods for
// embedding without the loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"market-signal-engine/internal/alerts"
	"market-signal-engine/internal/arbitrage"
	"market-signal-engine/internal/config"
	"market-signal-engine/internal/edge"
	"market-signal-engine/internal/feed"
	"market-signal-engine/internal/history"
	"market-signal-engine/internal/metrics"
	"market-signal-engine/internal/movement"
	"market-signal-engine/internal/odds"
	"market-signal-engine/internal/parlay"
)

type marketKey struct {
	gameID string
	market odds.Market
}

// Engine is the main orchestrator: it drains the feed, maintains line
// histories, and runs the scanners over the freshest book quotes.
type Engine struct {
	provider feed.Provider
	notifier *alerts.Notifier
	store    *history.Store
	cfg      config.Config

	arbCfg  arbitrage.Config
	moveCfg movement.Config

	mu     sync.Mutex
	latest map[marketKey]map[string]odds.Quote // freshest quote per book+side
	public map[marketKey]movement.PublicBetting

	lastCleanup time.Time
}

// New creates a new Engine with all dependencies.
func New(provider feed.Provider, notifier *alerts.Notifier, store *history.Store, cfg config.Config) *Engine {
	arbCfg := arbitrage.DefaultConfig()
	arbCfg.MinROIPercent = cfg.MinArbROIPct
	arbCfg.MinMiddleGap = cfg.MinMiddleGap
	arbCfg.Bankroll = cfg.Bankroll
	if len(cfg.MajorBooks) > 0 {
		arbCfg.MajorBooks = cfg.MajorBooks
	}

	return &Engine{
		provider: provider,
		notifier: notifier,
		store:    store,
		cfg:      cfg,
		arbCfg:   arbCfg,
		moveCfg: movement.Config{
			SteamPoints:        cfg.SteamPoints,
			SteamWindow:        cfg.SteamWindow,
			RLMPublicThreshold: cfg.RLMPublicThreshold,
			TrendPoints:        cfg.TrendPoints,
		},
		latest: make(map[marketKey]map[string]odds.Quote),
		public: make(map[marketKey]movement.PublicBetting),
	}
}

// Run drains the feed until ctx is canceled or the feed is exhausted. The
// feed provider paces the loop; a websocket blocks until the supplier sends,
// a replay delivers at its configured rate.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("Starting engine loop")

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("Engine stopped gracefully")
			return nil
		}

		if time.Since(e.lastCleanup) > e.cfg.CleanupInterval {
			e.notifier.CleanupOldAlerts()
			e.lastCleanup = time.Now()
		}

		batch, err := e.provider.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			slog.Info("Feed exhausted")
			return nil
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			slog.Info("Engine stopped gracefully")
			return nil
		case err != nil:
			e.notifier.LogError("reading feed", err)
			continue
		}

		e.process(batch)
	}
}

// process records one feed batch and rescans every (game, market) the batch
// touched.
func (e *Engine) process(batch []feed.Update) {
	start := time.Now()
	touched := make(map[marketKey]bool)

	for _, u := range batch {
		k := marketKey{u.GameID, u.Market}
		touched[k] = true
		e.remember(k, u)

		sig, err := e.RecordSnapshot(u.GameID, u.Market, u.Quote())
		if err != nil {
			metrics.SnapshotsRejected.Inc()
			e.notifier.LogError("recording snapshot", err)
			continue
		}
		metrics.SnapshotsRecorded.Inc()

		if sig.IsSteamMove {
			metrics.SteamMoves.Inc()
		}
		if sig.IsReverseLineMovement {
			metrics.ReverseLineMoves.Inc()
		}
		e.notifier.AlertMovement(sig)
	}

	games := make(map[string]bool)
	var arbs, middles int
	for k := range touched {
		games[k.gameID] = true
		quotes := e.quotesFor(k)

		opps := arbitrage.ScanArbitrage(k.gameID, k.market, quotes, e.arbCfg)
		sort.Slice(opps, func(i, j int) bool { return opps[i].ROIPercent > opps[j].ROIPercent })
		for _, opp := range opps {
			metrics.ArbitrageFound.Inc()
			e.notifier.AlertArbitrage(opp)
		}
		arbs += len(opps)

		mids := arbitrage.ScanMiddles(k.gameID, k.market, quotes, e.arbCfg)
		for _, mid := range mids {
			metrics.MiddlesFound.Inc()
			e.notifier.AlertMiddle(mid)
		}
		middles += len(mids)
	}

	metrics.TrackedGames.Set(float64(len(e.store.Keys())))
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	e.notifier.LogScan(len(games), arbs, middles)
}

// remember keeps only the freshest quote per (book, side) so scans always
// pair current prices, and captures the public split when the feed carries
// one.
func (e *Engine) remember(k marketKey, u feed.Update) {
	e.mu.Lock()
	defer e.mu.Unlock()

	byBook, ok := e.latest[k]
	if !ok {
		byBook = make(map[string]odds.Quote)
		e.latest[k] = byBook
	}
	byBook[u.Bookmaker+"|"+string(u.Side)] = u.Quote()

	if u.PublicPercent != nil {
		e.public[k] = movement.PublicBetting{Side: u.Side, Percent: *u.PublicPercent}
	}
}

func (e *Engine) quotesFor(k marketKey) []odds.Quote {
	e.mu.Lock()
	defer e.mu.Unlock()

	quotes := make([]odds.Quote, 0, len(e.latest[k]))
	for _, q := range e.latest[k] {
		quotes = append(quotes, q)
	}
	return quotes
}

// RecordSnapshot appends one quote observation to the line history and
// returns the movement signal computed over the updated sequence.
func (e *Engine) RecordSnapshot(gameID string, market odds.Market, q odds.Quote) (movement.Signal, error) {
	snap, err := e.snapshotFrom(gameID, market, q)
	if err != nil {
		return movement.Signal{}, err
	}

	if err := e.store.Append(snap); err != nil {
		return movement.Signal{}, err
	}

	snaps := e.store.History(gameID, market).Snapshots()

	e.mu.Lock()
	pub, ok := e.public[marketKey{gameID, market}]
	e.mu.Unlock()

	var pubPtr *movement.PublicBetting
	if ok {
		pubPtr = &pub
	}
	return movement.Compute(snaps, market, pubPtr, e.moveCfg), nil
}

// snapshotFrom normalizes a quote to the home-perspective value the history
// tracks: spreads flip sign for away quotes, totals use the line as-is, and
// moneyline histories follow the home price.
func (e *Engine) snapshotFrom(gameID string, market odds.Market, q odds.Quote) (history.Snapshot, error) {
	snap := history.Snapshot{
		GameID:    gameID,
		Market:    market,
		Timestamp: q.ObservedAt,
		Bookmaker: q.Bookmaker,
	}

	switch market {
	case odds.MarketSpread:
		if q.Line == nil {
			return history.Snapshot{}, fmt.Errorf("spread quote from %s has no line", q.Bookmaker)
		}
		if q.Side == odds.SideAway {
			snap.Spread = -*q.Line
		} else {
			snap.Spread = *q.Line
		}
	case odds.MarketTotal:
		if q.Line == nil {
			return history.Snapshot{}, fmt.Errorf("total quote from %s has no line", q.Bookmaker)
		}
		snap.Total = *q.Line
	case odds.MarketMoneyline:
		if q.Side == odds.SideAway {
			snap.MoneylineAway = q.AmericanOdds
			// The history tracks the home price; carry the last one forward
			// so an away-side update does not register as a drop to zero.
			if snaps := e.store.History(gameID, market).Snapshots(); len(snaps) > 0 {
				snap.MoneylineHome = snaps[len(snaps)-1].MoneylineHome
			}
		} else {
			snap.MoneylineHome = q.AmericanOdds
		}
	default:
		return history.Snapshot{}, fmt.Errorf("unknown market %q", market)
	}

	return snap, nil
}

// ScanArbitrage runs the arbitrage scanner over the supplied quotes with an
// optional ROI floor override; pass a negative minROI to keep the configured
// floor.
func (e *Engine) ScanArbitrage(gameID string, market odds.Market, quotes []odds.Quote, minROI float64) []arbitrage.Opportunity {
	cfg := e.arbCfg
	if minROI >= 0 {
		cfg.MinROIPercent = minROI
	}
	return arbitrage.ScanArbitrage(gameID, market, quotes, cfg)
}

// ScanMiddles runs the middle scanner over the supplied quotes.
func (e *Engine) ScanMiddles(gameID string, market odds.Market, quotes []odds.Quote) []arbitrage.Middle {
	return arbitrage.ScanMiddles(gameID, market, quotes, e.arbCfg)
}

// Consensus averages the freshest tracked quotes for one (game, market).
func (e *Engine) Consensus(gameID string, market odds.Market) odds.ConsensusLine {
	return odds.Consensus(e.quotesFor(marketKey{gameID, market}))
}

// ScoreEdge scores one betting opportunity with the configured weights.
func (e *Engine) ScoreEdge(in edge.Input) edge.Score {
	return edge.ScoreEdge(in, e.cfg.Weights)
}

// AnalyzeParlay scores leg correlation for a parlay.
func (e *Engine) AnalyzeParlay(legs []parlay.Leg) parlay.Report {
	return parlay.Analyze(legs)
}
