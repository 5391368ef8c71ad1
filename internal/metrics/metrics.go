package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine counters, registered on the default registry at init.
var (
	SnapshotsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_snapshots_recorded_total",
		Help: "Line snapshots appended to the history store.",
	})

	SnapshotsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_snapshots_rejected_total",
		Help: "Snapshots rejected for out-of-order timestamps.",
	})

	SteamMoves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_steam_moves_total",
		Help: "Movement signals flagged as steam moves.",
	})

	ReverseLineMoves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_reverse_line_moves_total",
		Help: "Movement signals flagged as reverse line movement.",
	})

	ArbitrageFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_arbitrage_opportunities_total",
		Help: "Arbitrage opportunities surfaced above the ROI floor.",
	})

	MiddlesFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_middle_opportunities_total",
		Help: "Middle opportunities surfaced above the gap floor.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_scan_duration_seconds",
		Help:    "Wall time of one full scan cycle.",
		Buckets: prometheus.DefBuckets,
	})

	TrackedGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_tracked_games",
		Help: "Distinct game/market histories currently held in memory.",
	})
)
