package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	reconnectBase = 1 * time.Second
	reconnectMax  = 30 * time.Second
)

// WSProvider streams updates from a supplier websocket. Disconnects are
// handled inside Next with exponential backoff; callers only ever see a
// batch or a context error.
type WSProvider struct {
	url     string
	conn    *websocket.Conn
	backoff time.Duration
}

func NewWSProvider(url string) *WSProvider {
	return &WSProvider{url: url, backoff: reconnectBase}
}

// Next reads one message and decodes it as a batch of updates. Malformed
// messages are logged and skipped rather than surfaced; a supplier hiccup
// should not kill the engine loop.
func (p *WSProvider) Next(ctx context.Context) ([]Update, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if p.conn == nil {
			if err := p.connect(ctx); err != nil {
				return nil, err
			}
		}

		_, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil, context.Canceled
			}
			slog.Warn("feed connection lost", "url", p.url, "error", err)
			p.conn.Close()
			p.conn = nil
			continue
		}

		var batch []Update
		if err := json.Unmarshal(message, &batch); err != nil {
			slog.Warn("skipping malformed feed message", "error", err)
			continue
		}
		return batch, nil
	}
}

func (p *WSProvider) connect(ctx context.Context) error {
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
		if err == nil {
			slog.Info("connected to odds feed", "url", p.url)
			p.conn = conn
			p.backoff = reconnectBase
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("dial %s: %w", p.url, ctx.Err())
		}

		slog.Warn("feed dial failed, retrying", "url", p.url, "backoff", p.backoff, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("dial %s: %w", p.url, ctx.Err())
		case <-time.After(p.backoff):
		}
		p.backoff *= 2
		if p.backoff > reconnectMax {
			p.backoff = reconnectMax
		}
	}
}

func (p *WSProvider) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
