package odds

import "time"

// Market represents the type of betting market
type Market string

const (
	MarketMoneyline Market = "moneyline"
	MarketSpread    Market = "spread"
	MarketTotal     Market = "total"
)

// Side identifies which outcome of a market a quote prices
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Opposite returns the complementary side of a two-way market.
func (s Side) Opposite() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	case SideOver:
		return SideUnder
	case SideUnder:
		return SideOver
	}
	return s
}

// Quote is a single bookmaker's price for one side of a market.
// Line is nil for moneyline quotes. Quotes are immutable once recorded.
type Quote struct {
	Bookmaker    string
	Market       Market
	Side         Side
	Line         *float64 // spread/total point, nil for moneyline
	AmericanOdds int
	ObservedAt   time.Time
}

// LineValue returns the quote's line, or 0 for moneyline quotes.
func (q Quote) LineValue() float64 {
	if q.Line == nil {
		return 0
	}
	return *q.Line
}

// ConsensusLine is the multi-book average for one market. Derived on demand,
// never stored. BookmakerCount 0 means no quotes were supplied - callers must
// check the count before trusting a consensus of zero books.
type ConsensusLine struct {
	Market              Market
	Line                float64
	AverageAmericanOdds float64
	BookmakerCount      int
}
