package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"market-signal-engine/internal/odds"
)

// Archive persists line snapshots to sqlite so histories survive restarts.
// It is an append log, not a query layer: the in-memory Store remains the
// read path during operation.
type Archive struct {
	db *sql.DB
}

// NewArchive opens (or creates) the snapshot archive at dbPath.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Archive{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS line_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		market TEXT NOT NULL,
		observed_at DATETIME NOT NULL,
		spread REAL NOT NULL,
		total REAL NOT NULL,
		moneyline_home INTEGER NOT NULL,
		moneyline_away INTEGER NOT NULL,
		bookmaker TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_key ON line_snapshots(game_id, market, observed_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Ping reports whether the database is reachable; used by health checks.
func (a *Archive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// AddSnapshot appends one snapshot row.
func (a *Archive) AddSnapshot(snap Snapshot) error {
	_, err := a.db.Exec(`
		INSERT INTO line_snapshots (game_id, market, observed_at, spread, total, moneyline_home, moneyline_away, bookmaker)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.GameID, string(snap.Market), snap.Timestamp.UTC(), snap.Spread, snap.Total,
		snap.MoneylineHome, snap.MoneylineAway, snap.Bookmaker)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

// AllSnapshots returns every archived snapshot in append order, used to
// rebuild the in-memory store on startup.
func (a *Archive) AllSnapshots() ([]Snapshot, error) {
	rows, err := a.db.Query(`
		SELECT game_id, market, observed_at, spread, total, moneyline_home, moneyline_away, bookmaker
		FROM line_snapshots
		ORDER BY game_id, market, observed_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var market string
		if err := rows.Scan(&snap.GameID, &market, &snap.Timestamp, &snap.Spread, &snap.Total,
			&snap.MoneylineHome, &snap.MoneylineAway, &snap.Bookmaker); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		snap.Market = odds.Market(market)
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// SnapshotsForGame returns the archived sequence for one (gameID, market).
func (a *Archive) SnapshotsForGame(gameID string, market odds.Market) ([]Snapshot, error) {
	rows, err := a.db.Query(`
		SELECT game_id, market, observed_at, spread, total, moneyline_home, moneyline_away, bookmaker
		FROM line_snapshots
		WHERE game_id = ? AND market = ?
		ORDER BY observed_at, id
	`, gameID, string(market))
	if err != nil {
		return nil, fmt.Errorf("querying snapshots by game: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var m string
		if err := rows.Scan(&snap.GameID, &m, &snap.Timestamp, &snap.Spread, &snap.Total,
			&snap.MoneylineHome, &snap.MoneylineAway, &snap.Bookmaker); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		snap.Market = odds.Market(m)
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// PruneBefore deletes snapshots observed before cutoff. The retention window
// (48h past game time) is the external scheduler's policy; the archive just
// executes it.
func (a *Archive) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := a.db.Exec(`DELETE FROM line_snapshots WHERE observed_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return result.RowsAffected()
}
