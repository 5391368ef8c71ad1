package parlay

import (
	"fmt"
	"strings"

	"market-signal-engine/internal/mathutil"
	"market-signal-engine/internal/odds"
)

// Severity grades how correlated a parlay is overall.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityNone   Severity = "none"
)

// Leg is one selection in a multi-leg parlay. Probability is the leg's
// standalone win probability (0-1), usually the implied probability of its
// price.
type Leg struct {
	GameID      string
	Team        string
	BetType     odds.Market
	Selection   string
	Probability float64
}

// Pair is the scored correlation between two legs.
type Pair struct {
	Leg1, Leg2 int // indexes into the analyzed slice
	Score      float64
	Warning    string
}

// Report is the correlation analysis for one parlay. AssumedProbability is
// the naive independence product; AdjustedProbability discounts it by
// ValueReductionPercent. The adjustment is a qualitative haircut, not a joint
// distribution; treat it as a red flag meter, not a fair price.
type Report struct {
	Legs                  int
	AssumedProbability    float64
	AdjustedProbability   float64
	ValueReductionPercent float64
	OverallScore          float64
	Severity              Severity
	Pairs                 []Pair
}

// linked bet-type pairs that are close to mechanically the same outcome
// when bet on the same team in the same game.
var linkedBetTypes = map[[2]odds.Market]bool{
	{odds.MarketMoneyline, odds.MarketSpread}: true,
	{odds.MarketSpread, odds.MarketMoneyline}: true,
	{odds.MarketTotal, odds.MarketSpread}:     true,
}

// Analyze scores every leg pair and aggregates. Fewer than two legs is a
// degenerate parlay: zero correlation, probabilities pass through untouched.
func Analyze(legs []Leg) Report {
	r := Report{Legs: len(legs), AssumedProbability: naiveProduct(legs)}

	if len(legs) < 2 {
		r.AdjustedProbability = r.AssumedProbability
		r.Severity = SeverityNone
		return r
	}

	var sum float64
	for i := 0; i < len(legs); i++ {
		for j := i + 1; j < len(legs); j++ {
			score := pairScore(legs[i], legs[j])
			sum += score
			r.Pairs = append(r.Pairs, Pair{
				Leg1:    i,
				Leg2:    j,
				Score:   score,
				Warning: pairWarning(legs[i], legs[j], score),
			})
		}
	}

	r.OverallScore = sum / float64(len(r.Pairs))
	r.Severity = severity(r.OverallScore)
	r.ValueReductionPercent = r.OverallScore / 2
	r.AdjustedProbability = r.AssumedProbability * (1 - r.ValueReductionPercent/100)
	return r
}

// pairScore accumulates correlation additively, capped at 100.
// Cross-game correlation (shared start times, weather) is deliberately not
// modeled.
func pairScore(a, b Leg) float64 {
	if a.GameID != b.GameID {
		return 0
	}

	score := 60.0
	if sameTeam(a, b) {
		score += 20
		if linkedBetTypes[[2]odds.Market{a.BetType, b.BetType}] {
			score += 15
		}
	} else if a.Team != "" && b.Team != "" {
		// Opposite sides of the same game are inversely linked but still
		// share the outcome space.
		score += 10
	}

	return mathutil.Clamp(score, 0, 100)
}

func sameTeam(a, b Leg) bool {
	return a.Team != "" && strings.EqualFold(a.Team, b.Team)
}

func pairWarning(a, b Leg, score float64) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("%s and %s are nearly the same bet", a.Selection, b.Selection)
	case score >= 60:
		return fmt.Sprintf("%s and %s share game %s", a.Selection, b.Selection, a.GameID)
	default:
		return ""
	}
}

func severity(score float64) Severity {
	switch {
	case score >= 80:
		return SeverityHigh
	case score >= 60:
		return SeverityMedium
	case score >= 30:
		return SeverityLow
	default:
		return SeverityNone
	}
}

func naiveProduct(legs []Leg) float64 {
	if len(legs) == 0 {
		return 0
	}
	p := 1.0
	for _, l := range legs {
		p *= l.Probability
	}
	return p
}
