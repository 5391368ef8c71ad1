package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// scoringFile is the optional YAML override for the edge-factor weights and
// the major-bookmaker whitelist. Omitted fields keep their defaults.
type scoringFile struct {
	Weights struct {
		CLV          *float64 `yaml:"clv"`
		SharpAction  *float64 `yaml:"sharp_action"`
		ModelEdge    *float64 `yaml:"model_edge"`
		Situational  *float64 `yaml:"situational"`
		LineMovement *float64 `yaml:"line_movement"`
		Inefficiency *float64 `yaml:"inefficiency"`
	} `yaml:"weights"`
	MajorBooks []string `yaml:"major_books"`
}

// applyScoringFile is all-or-nothing: a file that breaks the weight sum
// leaves the config untouched.
func applyScoringFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scoring file: %w", err)
	}

	var f scoringFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse scoring file: %w", err)
	}

	weights := cfg.Weights
	if f.Weights.CLV != nil {
		weights.CLV = *f.Weights.CLV
	}
	if f.Weights.SharpAction != nil {
		weights.SharpAction = *f.Weights.SharpAction
	}
	if f.Weights.ModelEdge != nil {
		weights.ModelEdge = *f.Weights.ModelEdge
	}
	if f.Weights.Situational != nil {
		weights.Situational = *f.Weights.Situational
	}
	if f.Weights.LineMovement != nil {
		weights.LineMovement = *f.Weights.LineMovement
	}
	if f.Weights.Inefficiency != nil {
		weights.Inefficiency = *f.Weights.Inefficiency
	}

	if err := weights.Validate(); err != nil {
		return fmt.Errorf("scoring file %s: %w", path, err)
	}

	cfg.Weights = weights
	if len(f.MajorBooks) > 0 {
		cfg.MajorBooks = f.MajorBooks
	}
	return nil
}
