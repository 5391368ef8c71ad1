package arbitrage

import (
	"time"

	"github.com/google/uuid"

	"market-signal-engine/internal/mathutil"
	"market-signal-engine/internal/odds"
)

// MiddleProbabilityModel estimates the chance the result lands inside the
// middle window. The default is a coarse width-tier heuristic, kept behind an
// interface so a historical-frequency model can replace it without touching
// the scanner.
type MiddleProbabilityModel interface {
	Estimate(market odds.Market, windowLow, windowHigh float64) float64
}

// TieredModel is the naive width-tier heuristic: wider window, higher chance.
// It is an approximation, not a calibrated model.
type TieredModel struct{}

func (TieredModel) Estimate(_ odds.Market, windowLow, windowHigh float64) float64 {
	width := windowHigh - windowLow
	switch {
	case width >= 3:
		return 0.25
	case width >= 2:
		return 0.15
	case width >= 1.5:
		return 0.10
	default:
		return 0.05
	}
}

// Normal margin spreads from historical scoring data: ATS margin ~ N(0, ~11.5),
// O/U margin ~ N(0, ~17) for NBA.
const (
	spreadStdDev = 11.5
	totalStdDev  = 17.0
)

// NormalModel estimates the window hit rate from a normal margin
// distribution centered on the window midpoint. Centering on the midpoint
// makes this an optimistic (upper-bound) estimate.
type NormalModel struct{}

func (NormalModel) Estimate(market odds.Market, windowLow, windowHigh float64) float64 {
	sigma := spreadStdDev
	if market == odds.MarketTotal {
		sigma = totalStdDev
	}

	half := (windowHigh - windowLow) / 2
	return mathutil.NormalCDF(half/sigma) - mathutil.NormalCDF(-half/sigma)
}

// ScanMiddles finds divergent-line pairs for one game+market where both legs
// win inside a window at least MinMiddleGap points wide. Middles only exist
// on pointed markets; moneyline quotes yield nothing.
func ScanMiddles(gameID string, market odds.Market, quotes []odds.Quote, cfg Config) []Middle {
	if market == odds.MarketMoneyline {
		return nil
	}

	model := cfg.MiddleModel
	if model == nil {
		model = TieredModel{}
	}

	var middles []Middle
	now := time.Now()

	for _, pair := range complementaryPairs(quotes, market) {
		low, high, ok := middleWindow(market, pair.first, pair.second)
		if !ok || high-low < cfg.MinMiddleGap {
			continue
		}

		d1, err := odds.AmericanToDecimal(pair.first.AmericanOdds)
		if err != nil {
			continue
		}
		d2, err := odds.AmericanToDecimal(pair.second.AmericanOdds)
		if err != nil {
			continue
		}

		leg1 := newLeg(pair.first, d1)
		leg2 := newLeg(pair.second, d2)

		// Same proportional split as arbitrage: when only one leg wins the
		// payouts are equal, which is what bounds the downside.
		sumInv := 1.0/d1 + 1.0/d2
		total, minProfit := allocateStakes(&leg1, &leg2, cfg.Bankroll, sumInv)

		// Inside the window both legs pay.
		maxProfit := leg1.Payout.Add(leg2.Payout).Sub(total)

		middles = append(middles, Middle{
			ID:                uuid.New(),
			GameID:            gameID,
			Market:            market,
			Leg1:              leg1,
			Leg2:              leg2,
			TotalStake:        total,
			MinProfit:         minProfit,
			MaxProfit:         maxProfit,
			WindowLow:         low,
			WindowHigh:        high,
			MiddleProbability: model.Estimate(market, low, high),
			ROIPercent:        maxProfit.InexactFloat64() / cfg.Bankroll * 100,
			Confidence:        cfg.confidence(leg1, leg2),
			DetectedAt:        now,
		})
	}

	return middles
}

// middleWindow returns the result range where both legs win. For spreads the
// window is expressed as home margin: home -2.5 with away +3.5 wins both in
// (2.5, 3.5). For totals it is simply (over line, under line).
func middleWindow(market odds.Market, first, second odds.Quote) (low, high float64, ok bool) {
	if first.Line == nil || second.Line == nil {
		return 0, 0, false
	}

	switch market {
	case odds.MarketSpread:
		low, high = -*first.Line, *second.Line
	case odds.MarketTotal:
		low, high = *first.Line, *second.Line
	default:
		return 0, 0, false
	}

	if high <= low {
		return 0, 0, false
	}
	return low, high, true
}
