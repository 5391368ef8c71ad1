package arbitrage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"market-signal-engine/internal/odds"
)

// ScanArbitrage finds guaranteed-profit pairs across bookmakers for one
// game+market. Quotes with invalid odds are skipped, an implied-probability
// sum >= 1 is the normal "no opportunity" outcome (never an error), and
// opportunities under the ROI floor are dropped as noise.
func ScanArbitrage(gameID string, market odds.Market, quotes []odds.Quote, cfg Config) []Opportunity {
	var opps []Opportunity

	now := time.Now()
	for _, pair := range complementaryPairs(quotes, market) {
		d1, err := odds.AmericanToDecimal(pair.first.AmericanOdds)
		if err != nil {
			continue
		}
		d2, err := odds.AmericanToDecimal(pair.second.AmericanOdds)
		if err != nil {
			continue
		}

		// Arbitrage exists iff 1/d1 + 1/d2 < 1.
		inv1, inv2 := 1.0/d1, 1.0/d2
		sumInv := inv1 + inv2
		if sumInv >= 1.0 {
			continue
		}

		leg1 := newLeg(pair.first, d1)
		leg2 := newLeg(pair.second, d2)

		total, profit := allocateStakes(&leg1, &leg2, cfg.Bankroll, sumInv)
		roi := profit.InexactFloat64() / cfg.Bankroll * 100

		if roi < cfg.MinROIPercent {
			continue
		}

		opps = append(opps, Opportunity{
			ID:               uuid.New(),
			GameID:           gameID,
			Market:           market,
			Leg1:             leg1,
			Leg2:             leg2,
			TotalStake:       total,
			GuaranteedProfit: profit,
			ROIPercent:       roi,
			Confidence:       cfg.confidence(leg1, leg2),
			DetectedAt:       now,
		})
	}

	return opps
}

type quotePair struct {
	first  odds.Quote // home or over side
	second odds.Quote // away or under side
}

// complementaryPairs yields every cross-book pairing of opposite sides for
// the market. Iterating all (home/over, away/under) combinations covers both
// orientations: A-home with B-away and B-home with A-away are distinct pairs.
func complementaryPairs(quotes []odds.Quote, market odds.Market) []quotePair {
	var firsts, seconds []odds.Quote
	for _, q := range quotes {
		if q.Market != market {
			continue
		}
		switch q.Side {
		case odds.SideHome, odds.SideOver:
			firsts = append(firsts, q)
		case odds.SideAway, odds.SideUnder:
			seconds = append(seconds, q)
		}
	}

	var pairs []quotePair
	for _, f := range firsts {
		for _, s := range seconds {
			if f.Bookmaker == s.Bookmaker {
				continue
			}
			if market != odds.MarketMoneyline && !linesCover(market, f, s) {
				continue
			}
			pairs = append(pairs, quotePair{first: f, second: s})
		}
	}
	return pairs
}

// linesCover reports whether the two lines leave no outcome where both legs
// lose. For spreads: home at L_h and away at L_a cover every margin when
// L_h + L_a >= 0 (e.g. home -2.5 with away +2.5 or better). For totals: the
// under line must sit at or above the over line.
func linesCover(market odds.Market, first, second odds.Quote) bool {
	if first.Line == nil || second.Line == nil {
		return false
	}
	switch market {
	case odds.MarketSpread:
		return *first.Line+*second.Line >= 0
	case odds.MarketTotal:
		return *second.Line >= *first.Line
	}
	return false
}

// allocateStakes splits the bankroll proportionally to each leg's implied
// probability, which equalizes the two payouts. Stakes are rounded to cents
// with the remainder assigned to leg2 so the split always conserves the
// bankroll exactly. The min() over payouts guards against rounding drift,
// not a substantive branch: the unrounded payouts are equal by construction.
func allocateStakes(leg1, leg2 *Leg, bankroll, sumInv float64) (total, profit decimal.Decimal) {
	b := decimal.NewFromFloat(bankroll)

	stake1 := decimal.NewFromFloat(bankroll * (1.0 / leg1.DecimalOdds) / sumInv).Round(2)
	stake2 := b.Sub(stake1)

	leg1.Stake = stake1
	leg2.Stake = stake2
	leg1.Payout = stake1.Mul(decimal.NewFromFloat(leg1.DecimalOdds)).Round(2)
	leg2.Payout = stake2.Mul(decimal.NewFromFloat(leg2.DecimalOdds)).Round(2)

	worst := leg1.Payout
	if leg2.Payout.LessThan(worst) {
		worst = leg2.Payout
	}

	return b, worst.Sub(b)
}

func newLeg(q odds.Quote, decimalOdds float64) Leg {
	return Leg{
		Bookmaker:    q.Bookmaker,
		Selection:    selectionLabel(q),
		Side:         q.Side,
		Line:         q.Line,
		AmericanOdds: q.AmericanOdds,
		DecimalOdds:  decimalOdds,
	}
}

func selectionLabel(q odds.Quote) string {
	if q.Line == nil {
		return fmt.Sprintf("%s ML %+d", q.Side, q.AmericanOdds)
	}
	return fmt.Sprintf("%s %+.1f (%+d)", q.Side, *q.Line, q.AmericanOdds)
}
