package arbitrage

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"market-signal-engine/internal/odds"
)

// ConfidenceTier grades settlement/liquidity risk by where the legs sit,
// not by the math: a 4% arb at two obscure books is worth less than it looks.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Leg is one side of a two-leg opportunity. Stake and Payout are cent-exact.
type Leg struct {
	Bookmaker    string
	Selection    string
	Side         odds.Side
	Line         *float64
	AmericanOdds int
	DecimalOdds  float64
	Stake        decimal.Decimal
	Payout       decimal.Decimal
}

// Opportunity is a guaranteed-profit arbitrage across two bookmakers.
// Created fresh per scan and never mutated; re-scans supersede older ones.
type Opportunity struct {
	ID               uuid.UUID
	GameID           string
	Market           odds.Market
	Leg1             Leg
	Leg2             Leg
	TotalStake       decimal.Decimal
	GuaranteedProfit decimal.Decimal
	ROIPercent       float64
	Confidence       ConfidenceTier
	DetectedAt       time.Time
}

// Middle is a partial-overlap opportunity: both legs win inside the window,
// otherwise one wins and one loses. MinProfit may be negative - middles are
// not risk-free and callers must not treat them like arbitrage.
type Middle struct {
	ID                uuid.UUID
	GameID            string
	Market            odds.Market
	Leg1              Leg
	Leg2              Leg
	TotalStake        decimal.Decimal
	MinProfit         decimal.Decimal
	MaxProfit         decimal.Decimal
	WindowLow         float64
	WindowHigh        float64
	MiddleProbability float64
	ROIPercent        float64
	Confidence        ConfidenceTier
	DetectedAt        time.Time
}

// Config holds scanner settings.
type Config struct {
	MinROIPercent  float64  // arbitrage noise floor, default 0.5%
	MinMiddleGap   float64  // minimum line gap for a middle, default 1.0
	Bankroll       float64  // notional bankroll the stake split is quoted against
	MajorBooks     []string // whitelist driving the confidence tier
	MiddleModel    MiddleProbabilityModel
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinROIPercent: 0.5,
		MinMiddleGap:  1.0,
		Bankroll:      100,
		MajorBooks:    DefaultMajorBooks(),
		MiddleModel:   TieredModel{},
	}
}

// DefaultMajorBooks lists the books treated as settlement-safe.
func DefaultMajorBooks() []string {
	return []string{"pinnacle", "circa", "draftkings", "fanduel", "betmgm", "caesars"}
}

func (c Config) isMajor(bookmaker string) bool {
	b := strings.ToLower(strings.TrimSpace(bookmaker))
	for _, m := range c.MajorBooks {
		if b == strings.ToLower(m) {
			return true
		}
	}
	return false
}

func (c Config) confidence(leg1, leg2 Leg) ConfidenceTier {
	major := 0
	if c.isMajor(leg1.Bookmaker) {
		major++
	}
	if c.isMajor(leg2.Bookmaker) {
		major++
	}
	switch major {
	case 2:
		return ConfidenceHigh
	case 1:
		return ConfidenceMedium
	}
	return ConfidenceLow
}
