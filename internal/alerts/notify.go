package alerts

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"market-signal-engine/internal/arbitrage"
	"market-signal-engine/internal/edge"
	"market-signal-engine/internal/movement"
)

// Sink receives formatted alert lines after dedup. Optional; nil means
// log-only.
type Sink interface {
	Send(text string) error
}

// Notifier handles alert notifications
type Notifier struct {
	mu         sync.Mutex
	lastAlerts map[string]time.Time // Dedupe alerts
	cooldown   time.Duration        // Minimum time between same alerts
	sink       Sink
}

// NewNotifier creates a new notifier
func NewNotifier(cooldown time.Duration) *Notifier {
	return &Notifier{
		lastAlerts: make(map[string]time.Time),
		cooldown:   cooldown,
	}
}

// SetSink attaches an outbound sink (e.g. telegram). Call before the engine
// starts; the notifier does not lock around the field.
func (n *Notifier) SetSink(s Sink) {
	n.sink = s
}

// shouldAlert applies the per-key cooldown.
func (n *Notifier) shouldAlert(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if lastTime, ok := n.lastAlerts[key]; ok {
		if time.Since(lastTime) < n.cooldown {
			return false
		}
	}
	n.lastAlerts[key] = time.Now()
	return true
}

func (n *Notifier) emit(text string) {
	log.Print(text)
	if n.sink != nil {
		if err := n.sink.Send(text); err != nil {
			log.Printf("ERROR [sink]: %v", err)
		}
	}
}

// AlertArbitrage sends an alert for a guaranteed-profit pair
func (n *Notifier) AlertArbitrage(opp arbitrage.Opportunity) {
	key := fmt.Sprintf("arb-%s-%s-%s-%s", opp.GameID, opp.Market, opp.Leg1.Bookmaker, opp.Leg2.Bookmaker)
	if !n.shouldAlert(key) {
		return
	}

	n.emit(fmt.Sprintf("ARB %s %s: %s @ %s vs %s @ %s | stake $%s+$%s profit=$%s roi=%.2f%% conf=%s",
		opp.GameID, opp.Market,
		opp.Leg1.Selection, opp.Leg1.Bookmaker,
		opp.Leg2.Selection, opp.Leg2.Bookmaker,
		opp.Leg1.Stake, opp.Leg2.Stake,
		opp.GuaranteedProfit, opp.ROIPercent, opp.Confidence,
	))
}

// AlertMiddle sends an alert for a middle window
func (n *Notifier) AlertMiddle(mid arbitrage.Middle) {
	key := fmt.Sprintf("mid-%s-%s-%s-%s", mid.GameID, mid.Market, mid.Leg1.Bookmaker, mid.Leg2.Bookmaker)
	if !n.shouldAlert(key) {
		return
	}

	n.emit(fmt.Sprintf("MIDDLE %s %s: %s / %s window=[%.1f,%.1f] p=%.0f%% max=$%s min=$%s conf=%s",
		mid.GameID, mid.Market,
		mid.Leg1.Selection, mid.Leg2.Selection,
		mid.WindowLow, mid.WindowHigh,
		mid.MiddleProbability*100,
		mid.MaxProfit, mid.MinProfit, mid.Confidence,
	))
}

// AlertMovement sends an alert when a movement signal flags steam or RLM
func (n *Notifier) AlertMovement(sig movement.Signal) {
	if !sig.IsSteamMove && !sig.IsReverseLineMovement {
		return
	}

	var tags []string
	if sig.IsSteamMove {
		tags = append(tags, "STEAM")
	}
	if sig.IsReverseLineMovement {
		tags = append(tags, "RLM")
	}

	key := fmt.Sprintf("move-%s-%s-%s", sig.GameID, sig.Market, strings.Join(tags, "+"))
	if !n.shouldAlert(key) {
		return
	}

	n.emit(fmt.Sprintf("%s %s %s: total=%+.1f recent=%+.1f vol=%.2f trend=%s over %d snaps",
		strings.Join(tags, "+"), sig.GameID, sig.Market,
		sig.TotalMovement, sig.RecentMovement, sig.Volatility, sig.Trend, sig.SnapshotCount,
	))
}

// AlertEdge sends an alert for actionable edge scores
func (n *Notifier) AlertEdge(s edge.Score) {
	if s.Recommendation != edge.StrongBet && s.Recommendation != edge.Lean {
		return
	}

	key := fmt.Sprintf("edge-%s-%s", s.GameID, s.Recommendation)
	if !n.shouldAlert(key) {
		return
	}

	n.emit(fmt.Sprintf("%s %s: score=%.1f conf=%.2f stake=%.2f%%",
		s.Recommendation, s.GameID, s.Overall, s.Confidence, s.SuggestedStakePercent,
	))
}

// LogScan logs a scan completion
func (n *Notifier) LogScan(games, arbs, middles int) {
	log.Printf("Scan complete: %d games, %d arbs, %d middles", games, arbs, middles)
}

// LogError logs an error
func (n *Notifier) LogError(context string, err error) {
	log.Printf("ERROR [%s]: %v", context, err)
}

// LogStartup logs engine startup
func (n *Notifier) LogStartup(config string) {
	log.Printf("Engine started |%s", config)
}

// CleanupOldAlerts removes stale alert records
func (n *Notifier) CleanupOldAlerts() {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := time.Now().Add(-1 * time.Hour)
	for key, t := range n.lastAlerts {
		if t.Before(cutoff) {
			delete(n.lastAlerts, key)
		}
	}
}
