package arbitrage

import (
	"testing"

	"github.com/shopspring/decimal"

	"market-signal-engine/internal/odds"
)

func ml(book string, side odds.Side, american int) odds.Quote {
	return odds.Quote{Bookmaker: book, Market: odds.MarketMoneyline, Side: side, AmericanOdds: american}
}

func lined(book string, market odds.Market, side odds.Side, line float64, american int) odds.Quote {
	return odds.Quote{Bookmaker: book, Market: market, Side: side, Line: &line, AmericanOdds: american}
}

func TestScanArbitrageFindsProfit(t *testing.T) {
	// +110 and +105 across books: decimals 2.10 and 2.05, implied sum 0.964.
	quotes := []odds.Quote{
		ml("draftkings", odds.SideHome, 110),
		ml("fanduel", odds.SideAway, 105),
	}

	opps := ScanArbitrage("game-1", odds.MarketMoneyline, quotes, DefaultConfig())

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	opp := opps[0]
	if !opp.GuaranteedProfit.IsPositive() {
		t.Errorf("GuaranteedProfit = %s, want > 0", opp.GuaranteedProfit)
	}
	if opp.ROIPercent < 3.5 || opp.ROIPercent > 4.0 {
		t.Errorf("ROIPercent = %v, want ~3.7", opp.ROIPercent)
	}
	if opp.Confidence != ConfidenceHigh {
		t.Errorf("Confidence = %s, want high for two major books", opp.Confidence)
	}

	// Equal-payout allocation: the two payouts differ by at most rounding.
	diff := opp.Leg1.Payout.Sub(opp.Leg2.Payout).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(0.05)) {
		t.Errorf("payouts not equalized: %s vs %s", opp.Leg1.Payout, opp.Leg2.Payout)
	}
}

func TestScanArbitrageNoOpportunity(t *testing.T) {
	// -125 and -110: decimals 1.80 and 1.91, implied sum > 1. The normal case.
	quotes := []odds.Quote{
		ml("draftkings", odds.SideHome, -125),
		ml("fanduel", odds.SideAway, -110),
	}

	if opps := ScanArbitrage("game-1", odds.MarketMoneyline, quotes, DefaultConfig()); len(opps) != 0 {
		t.Errorf("got %d opportunities, want none", len(opps))
	}
}

func TestScanArbitrageThreeBookSpread(t *testing.T) {
	// Only the +100/+113 pairing dips under an implied sum of 1 (0.969);
	// pairing with book C stays above it.
	quotes := []odds.Quote{
		lined("draftkings", odds.MarketSpread, odds.SideHome, -2.5, 100),
		lined("fanduel", odds.MarketSpread, odds.SideAway, 2.5, 113),
		lined("betmgm", odds.MarketSpread, odds.SideAway, 2.5, -110),
	}

	opps := ScanArbitrage("game-1", odds.MarketSpread, quotes, DefaultConfig())

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want exactly 1", len(opps))
	}
	opp := opps[0]
	if opp.Leg2.Bookmaker != "fanduel" {
		t.Errorf("Leg2 bookmaker = %s, want fanduel", opp.Leg2.Bookmaker)
	}
	if opp.ROIPercent < 2.9 || opp.ROIPercent > 3.3 {
		t.Errorf("ROIPercent = %v, want ~3.1", opp.ROIPercent)
	}
}

func TestScanArbitrageROIFloor(t *testing.T) {
	// +101/+100 is a real arb (implied sum 0.9975) but the ~0.25% ROI sits
	// under the default floor and must be dropped as noise.
	quotes := []odds.Quote{
		ml("draftkings", odds.SideHome, 101),
		ml("fanduel", odds.SideAway, 100),
	}

	if opps := ScanArbitrage("game-1", odds.MarketMoneyline, quotes, DefaultConfig()); len(opps) != 0 {
		t.Errorf("sub-floor ROI should be filtered, got %d opportunities", len(opps))
	}

	cfg := DefaultConfig()
	cfg.MinROIPercent = 0
	if opps := ScanArbitrage("game-1", odds.MarketMoneyline, quotes, cfg); len(opps) != 1 {
		t.Errorf("with a zero floor the same quotes should surface, got %d", len(opps))
	}
}

func TestScanArbitrageBothOrientations(t *testing.T) {
	// Each book quotes both sides. Only A-home with B-away has value; the
	// reverse orientation must be checked and rejected, not missed.
	quotes := []odds.Quote{
		ml("draftkings", odds.SideHome, 110),
		ml("draftkings", odds.SideAway, -120),
		ml("fanduel", odds.SideHome, -120),
		ml("fanduel", odds.SideAway, 105),
	}

	opps := ScanArbitrage("game-1", odds.MarketMoneyline, quotes, DefaultConfig())

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].Leg1.Bookmaker == opps[0].Leg2.Bookmaker {
		t.Error("legs must come from different bookmakers")
	}
	if opps[0].Leg1.Bookmaker != "draftkings" || opps[0].Leg2.Bookmaker != "fanduel" {
		t.Errorf("wrong pairing: %s / %s", opps[0].Leg1.Bookmaker, opps[0].Leg2.Bookmaker)
	}
}

func TestScanArbitrageSameBookSkipped(t *testing.T) {
	quotes := []odds.Quote{
		ml("draftkings", odds.SideHome, 110),
		ml("draftkings", odds.SideAway, 105),
	}

	if opps := ScanArbitrage("game-1", odds.MarketMoneyline, quotes, DefaultConfig()); len(opps) != 0 {
		t.Error("a single book cannot arb against itself")
	}
}

func TestScanArbitrageSpreadLinesMustCover(t *testing.T) {
	// home -3.5 with away +2.5 leaves a home win by 3 where both legs lose.
	// Great odds do not matter when the lines leave a losing gap.
	quotes := []odds.Quote{
		lined("draftkings", odds.MarketSpread, odds.SideHome, -3.5, 110),
		lined("fanduel", odds.MarketSpread, odds.SideAway, 2.5, 105),
	}

	if opps := ScanArbitrage("game-1", odds.MarketSpread, quotes, DefaultConfig()); len(opps) != 0 {
		t.Error("non-covering spread lines must not produce an opportunity")
	}
}

func TestStakesConserveBankroll(t *testing.T) {
	quotes := []odds.Quote{
		ml("draftkings", odds.SideHome, 110),
		ml("fanduel", odds.SideAway, 105),
	}

	cfg := DefaultConfig()
	cfg.Bankroll = 250

	opps := ScanArbitrage("game-1", odds.MarketMoneyline, quotes, cfg)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}

	sum := opps[0].Leg1.Stake.Add(opps[0].Leg2.Stake)
	if !sum.Equal(decimal.NewFromInt(250)) {
		t.Errorf("stakes sum to %s, want exactly 250", sum)
	}
}

func TestConfidenceTiers(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		book1, book2 string
		want         ConfidenceTier
	}{
		{"DraftKings", "fanduel", ConfidenceHigh},
		{"draftkings", "bovada", ConfidenceMedium},
		{"bovada", "mybookie", ConfidenceLow},
	}

	for _, tt := range tests {
		got := cfg.confidence(Leg{Bookmaker: tt.book1}, Leg{Bookmaker: tt.book2})
		if got != tt.want {
			t.Errorf("confidence(%s, %s) = %s, want %s", tt.book1, tt.book2, got, tt.want)
		}
	}
}
