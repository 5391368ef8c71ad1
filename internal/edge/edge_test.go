package edge

import (
	"math"
	"testing"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}

	bad := DefaultWeights()
	bad.CLV = 0.30
	if err := bad.Validate(); err == nil {
		t.Error("weights summing to 1.05 should fail validation")
	}
}

func TestNeutralInputScoresFifty(t *testing.T) {
	// Line at model and projection, balanced splits, no flags: every factor
	// sits at its base of 50 and the composite is a coin flip.
	in := Input{
		GameID:           "game-1",
		CurrentLine:      -3.5,
		OpeningLine:      -3.5,
		ProjectedClosing: -3.5,
		SharpPercent:     50,
		PublicPercent:    50,
		ModelPrediction:  -3.5,
	}

	s := ScoreEdge(in, DefaultWeights())

	if math.Abs(s.Overall-50) > 1e-9 {
		t.Errorf("Overall = %v, want 50", s.Overall)
	}
	if s.Recommendation != Pass {
		t.Errorf("Recommendation = %s, want PASS", s.Recommendation)
	}
	// Zero edge never stakes, even at full confidence.
	if s.SuggestedStakePercent != 0 {
		t.Errorf("SuggestedStakePercent = %v, want 0", s.SuggestedStakePercent)
	}
	// All factors equal means zero stddev and maximum confidence.
	if s.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", s.Confidence)
	}
}

func TestStrongInputIsStrongBet(t *testing.T) {
	in := Input{
		GameID:              "game-1",
		CurrentLine:         -5.5,
		OpeningLine:         -3.0,
		ProjectedClosing:    -7.5,
		SharpPercent:        75,
		PublicPercent:       20,
		ModelPrediction:     -9.0,
		ModelDisagreement:   2.0,
		ReverseLineMovement: true,
		Situational: Situational{
			RestAdvantageDays: 2,
			OpponentShortRest: true,
			DivisionalRevenge: true,
		},
	}

	s := ScoreEdge(in, DefaultWeights())

	if s.Overall < 85 {
		t.Errorf("Overall = %v, want >= 85 for a stacked signal", s.Overall)
	}
	if s.Recommendation != StrongBet {
		t.Errorf("Recommendation = %s, want STRONG_BET", s.Recommendation)
	}
	// Quarter-Kelly on a large edge overruns the cap; must clamp to 5.
	if s.SuggestedStakePercent != 5 {
		t.Errorf("SuggestedStakePercent = %v, want capped at 5", s.SuggestedStakePercent)
	}
	if len(s.Insights) == 0 {
		t.Error("stacked signal should carry insights")
	}
}

func TestWeakInputIsAvoid(t *testing.T) {
	// Current line far past the projected close: negative CLV drags the
	// composite below 40.
	in := Input{
		GameID:           "game-1",
		CurrentLine:      -8.5,
		OpeningLine:      -8.5,
		ProjectedClosing: -3.5,
		SharpPercent:     50,
		PublicPercent:    50,
		ModelPrediction:  -8.5,
	}

	s := ScoreEdge(in, DefaultWeights())

	if s.Overall >= 40 {
		t.Errorf("Overall = %v, want < 40", s.Overall)
	}
	if s.Recommendation != Avoid {
		t.Errorf("Recommendation = %s, want AVOID", s.Recommendation)
	}
	if s.SuggestedStakePercent != 0 {
		t.Errorf("negative edge must stake 0, got %v", s.SuggestedStakePercent)
	}
}

func TestRecommendationThresholds(t *testing.T) {
	tests := []struct {
		overall float64
		want    Recommendation
	}{
		{75, StrongBet},
		{74.9, Lean},
		{60, Lean},
		{59.9, Pass},
		{40, Pass},
		{39.9, Avoid},
		{0, Avoid},
	}

	for _, tt := range tests {
		if got := recommend(tt.overall); got != tt.want {
			t.Errorf("recommend(%v) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}

func TestFactorScoresStayBounded(t *testing.T) {
	// Absurd inputs must clamp, never escape [0,100] or push the stake
	// outside [0,5].
	extremes := []Input{
		{CurrentLine: 500, OpeningLine: -500, ProjectedClosing: -500, SharpPercent: 100, PublicPercent: 0, ModelPrediction: -500, ModelDisagreement: 100, ReverseLineMovement: true,
			Situational: Situational{RestAdvantageDays: 10, OpponentShortRest: true, DivisionalRevenge: true}},
		{CurrentLine: -500, OpeningLine: 500, ProjectedClosing: 500, SharpPercent: 0, PublicPercent: 100, ModelPrediction: -500, ModelDisagreement: -100},
	}

	for _, in := range extremes {
		s := ScoreEdge(in, DefaultWeights())
		for _, f := range s.Factors {
			if f.Score < 0 || f.Score > 100 {
				t.Errorf("factor %q = %v, out of [0,100]", f.Name, f.Score)
			}
		}
		if s.Overall < 0 || s.Overall > 100 {
			t.Errorf("Overall = %v, out of [0,100]", s.Overall)
		}
		if s.SuggestedStakePercent < 0 || s.SuggestedStakePercent > 5 {
			t.Errorf("SuggestedStakePercent = %v, out of [0,5]", s.SuggestedStakePercent)
		}
		if s.Confidence < 0.3 || s.Confidence > 1.0 {
			t.Errorf("Confidence = %v, out of [0.3,1.0]", s.Confidence)
		}
	}
}

func TestSharpScoreComponents(t *testing.T) {
	tests := []struct {
		name         string
		sharp, pub   float64
		want         float64
	}{
		{"balanced", 50, 50, 50},
		{"extreme sharp only", 75, 60, 80},
		{"gap only", 65, 30, 70},
		{"extreme and gap", 80, 30, 100},
		{"extreme low side", 25, 60, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sharpScore(Input{SharpPercent: tt.sharp, PublicPercent: tt.pub})
			if got != tt.want {
				t.Errorf("sharpScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	in := Input{
		CurrentLine:      -7.0,
		OpeningLine:      -3.0,
		ProjectedClosing: -7.0,
		SharpPercent:     50,
		PublicPercent:    85,
		ModelPrediction:  -7.0,
	}

	s := ScoreEdge(in, DefaultWeights())

	if len(s.Warnings) < 2 {
		t.Fatalf("want public-heavy and stale-movement warnings, got %v", s.Warnings)
	}
}
