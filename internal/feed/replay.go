package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"
)

// ReplayProvider plays a recorded JSON file of updates back at a fixed rate.
// Updates sharing an ObservedAt stamp are delivered as one batch, so a
// recorded scan cycle stays a scan cycle on replay.
type ReplayProvider struct {
	updates []Update
	pos     int
	limiter *rate.Limiter
}

// NewReplayProvider loads the file up front; a broken recording fails fast
// instead of mid-replay. batchesPerSecond bounds the delivery rate.
func NewReplayProvider(path string, batchesPerSecond float64) (*ReplayProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}

	var updates []Update
	if err := json.Unmarshal(data, &updates); err != nil {
		return nil, fmt.Errorf("parse replay file %s: %w", path, err)
	}

	return &ReplayProvider{
		updates: updates,
		limiter: rate.NewLimiter(rate.Limit(batchesPerSecond), 1),
	}, nil
}

// Next returns the next same-timestamp batch, or io.EOF once the recording
// is exhausted.
func (p *ReplayProvider) Next(ctx context.Context) ([]Update, error) {
	if p.pos >= len(p.updates) {
		return nil, io.EOF
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := p.pos
	ts := p.updates[start].ObservedAt
	for p.pos < len(p.updates) && p.updates[p.pos].ObservedAt.Equal(ts) {
		p.pos++
	}
	return p.updates[start:p.pos], nil
}

func (p *ReplayProvider) Close() error { return nil }
