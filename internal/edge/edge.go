package edge

import (
	"fmt"
	"math"

	"market-signal-engine/internal/mathutil"
)

// Recommendation is the action tier derived from the overall score.
type Recommendation string

const (
	StrongBet Recommendation = "STRONG_BET"
	Lean      Recommendation = "LEAN"
	Pass      Recommendation = "PASS"
	Avoid     Recommendation = "AVOID"
)

// Situational carries externally supplied context flags. The scorer does not
// compute these; schedule and injury data live upstream.
type Situational struct {
	RestAdvantageDays float64 // days of rest edge over the opponent
	OpponentShortRest bool
	DivisionalRevenge bool
}

// Input is everything a single scoring pass needs. SharpPercent and
// PublicPercent are 0-100 betting splits; ModelDisagreement is the numeric
// gap in points between the external model and the market consensus.
type Input struct {
	GameID              string
	CurrentLine         float64
	OpeningLine         float64
	ProjectedClosing    float64
	SharpPercent        float64
	PublicPercent       float64
	ModelPrediction     float64
	ModelDisagreement   float64
	ReverseLineMovement bool
	Situational         Situational
}

// Factor is one scored component with its weight, kept on the result so the
// caller can show where the number came from.
type Factor struct {
	Name   string
	Score  float64 // 0-100
	Weight float64
}

// Score is the composite result. Warnings and Insights are explanatory only
// and never feed back into Overall.
type Score struct {
	GameID                string
	Overall               float64
	Recommendation        Recommendation
	Confidence            float64 // 0.3-1.0, driven by factor agreement
	SuggestedStakePercent float64 // 0-5 percent of bankroll, quarter-Kelly
	Factors               []Factor
	Warnings              []string
	Insights              []string
}

// Weights for the six factors. They must sum to 1.0.
type Weights struct {
	CLV          float64
	SharpAction  float64
	ModelEdge    float64
	Situational  float64
	LineMovement float64
	Inefficiency float64
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		CLV:          0.25,
		SharpAction:  0.20,
		ModelEdge:    0.20,
		Situational:  0.15,
		LineMovement: 0.10,
		Inefficiency: 0.10,
	}
}

// Validate checks the weights sum to 1.0 within float tolerance.
func (w Weights) Validate() error {
	sum := w.CLV + w.SharpAction + w.ModelEdge + w.Situational + w.LineMovement + w.Inefficiency
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("factor weights sum to %.4f, must sum to 1.0", sum)
	}
	return nil
}

const (
	sharpExtremeHigh = 70
	sharpExtremeLow  = 30
	sharpPublicGap   = 30
	steepMovementPts = 2.0
	publicHeavyPct   = 80
	lowConfidence    = 0.5
	staleMovementPts = 3.0
)

// ScoreEdge runs the six factor computations and combines them under the
// given weights. It is a pure function; all inputs arrive in Input.
func ScoreEdge(in Input, w Weights) Score {
	factors := []Factor{
		{Name: "closing line value", Score: clvScore(in), Weight: w.CLV},
		{Name: "sharp action", Score: sharpScore(in), Weight: w.SharpAction},
		{Name: "model edge", Score: modelScore(in), Weight: w.ModelEdge},
		{Name: "situational", Score: situationalScore(in.Situational), Weight: w.Situational},
		{Name: "line movement", Score: movementScore(in), Weight: w.LineMovement},
		{Name: "market inefficiency", Score: inefficiencyScore(in), Weight: w.Inefficiency},
	}

	var overall float64
	scores := make([]float64, len(factors))
	for i, f := range factors {
		overall += f.Score * f.Weight
		scores[i] = f.Score
	}

	// Factor agreement drives confidence, independent of the score level:
	// six factors all saying 55 is a stronger signal than a 90/20 split.
	confidence := mathutil.Clamp(1-mathutil.Stddev(scores)/100, 0.3, 1.0)

	s := Score{
		GameID:                in.GameID,
		Overall:               overall,
		Recommendation:        recommend(overall),
		Confidence:            confidence,
		SuggestedStakePercent: stakePercent(overall, confidence),
		Factors:               factors,
	}
	s.Warnings, s.Insights = annotate(in, s)
	return s
}

func recommend(overall float64) Recommendation {
	switch {
	case overall >= 75:
		return StrongBet
	case overall >= 60:
		return Lean
	case overall < 40:
		return Avoid
	default:
		return Pass
	}
}

// stakePercent sizes the bet with quarter-Kelly, capped at 5% of bankroll.
// A negative edge always stakes zero.
func stakePercent(overall, confidence float64) float64 {
	edge := (overall - 50) / 100
	if edge <= 0 {
		return 0
	}
	kelly := edge * confidence
	return mathutil.Clamp(kelly*0.25*100, 0, 5)
}

func clvScore(in Input) float64 {
	expectedCLV := in.CurrentLine - in.ProjectedClosing
	return mathutil.Clamp(50+expectedCLV*10, 0, 100)
}

func sharpScore(in Input) float64 {
	score := 50.0
	if sharpExtreme(in.SharpPercent) {
		score += 30
	}
	if math.Abs(in.SharpPercent-in.PublicPercent) > sharpPublicGap {
		score += 20
	}
	return mathutil.Clamp(score, 0, 100)
}

func sharpExtreme(pct float64) bool {
	return pct > sharpExtremeHigh || pct < sharpExtremeLow
}

func modelScore(in Input) float64 {
	return mathutil.Clamp(50+math.Abs(in.CurrentLine-in.ModelPrediction)*15, 0, 100)
}

func situationalScore(s Situational) float64 {
	score := 50.0
	if s.RestAdvantageDays > 1 {
		score += 10
	}
	if s.OpponentShortRest {
		score += 15
	}
	if s.DivisionalRevenge {
		score += 10
	}
	return mathutil.Clamp(score, 0, 100)
}

func movementScore(in Input) float64 {
	score := 50.0
	if math.Abs(in.CurrentLine-in.OpeningLine) > steepMovementPts {
		score += 20
	}
	if in.ReverseLineMovement {
		score += 30
	}
	return mathutil.Clamp(score, 0, 100)
}

func inefficiencyScore(in Input) float64 {
	score := 50 + in.ModelDisagreement*10
	if sharpExtreme(in.SharpPercent) {
		score += 15
	}
	return mathutil.Clamp(score, 0, 100)
}

// annotate produces the human-readable warning/insight strings. Thresholds
// here are explanatory only and never change the score.
func annotate(in Input, s Score) (warnings, insights []string) {
	movement := in.CurrentLine - in.OpeningLine

	if in.PublicPercent > publicHeavyPct {
		warnings = append(warnings, fmt.Sprintf("public is %.0f%% on one side; heavy concentration", in.PublicPercent))
	}
	if s.Confidence < lowConfidence {
		warnings = append(warnings, "factor scores disagree sharply; treat the overall score with caution")
	}
	if math.Abs(movement) > staleMovementPts {
		warnings = append(warnings, fmt.Sprintf("line already moved %.1f points; entry value may be gone", movement))
	}

	if in.ReverseLineMovement {
		insights = append(insights, "reverse line movement: the line is moving against the public majority")
	}
	if clv := in.CurrentLine - in.ProjectedClosing; clv > 1 {
		insights = append(insights, fmt.Sprintf("expected closing line value of %.1f points", clv))
	}
	if math.Abs(in.SharpPercent-in.PublicPercent) > sharpPublicGap {
		insights = append(insights, "sharp and public money are on opposite sides")
	}
	return warnings, insights
}
