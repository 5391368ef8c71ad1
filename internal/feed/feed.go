// Package feed supplies odds quotes to the engine. The engine never cares
// where quotes come from; anything satisfying Provider works, and the polling
// cadence belongs to the caller.
package feed

import (
	"context"
	"time"

	"market-signal-engine/internal/odds"
)

// Update is one bookmaker price observation as delivered by a provider.
// PublicPercent, when present, is the public betting split on Side.
type Update struct {
	GameID        string      `json:"gameId"`
	Bookmaker     string      `json:"bookmaker"`
	Market        odds.Market `json:"market"`
	Side          odds.Side   `json:"side"`
	Line          *float64    `json:"line,omitempty"`
	AmericanOdds  int         `json:"americanOdds"`
	ObservedAt    time.Time   `json:"observedAt"`
	PublicPercent *float64    `json:"publicPercent,omitempty"`
}

// Quote converts the update to the engine's quote type.
func (u Update) Quote() odds.Quote {
	return odds.Quote{
		Bookmaker:    u.Bookmaker,
		Market:       u.Market,
		Side:         u.Side,
		Line:         u.Line,
		AmericanOdds: u.AmericanOdds,
		ObservedAt:   u.ObservedAt,
	}
}

// Provider is a pull-based quote source. Next blocks until a batch is
// available, the source is exhausted (io.EOF), or ctx is canceled.
type Provider interface {
	Next(ctx context.Context) ([]Update, error)
	Close() error
}
