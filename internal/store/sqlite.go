package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/models"
)

// SQLiteStore implements PositionStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed position store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Active and archived hedge positions
	CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		instrument TEXT NOT NULL,
		underlying TEXT NOT NULL,
		strike REAL NOT NULL DEFAULT 0,
		expiry DATE,
		contracts INTEGER NOT NULL DEFAULT 0,
		entry_premium REAL NOT NULL DEFAULT 0,
		entry_nav REAL NOT NULL DEFAULT 0,
		shares REAL NOT NULL DEFAULT 0,
		entry_date DATE NOT NULL,
		closed_at DATETIME,
		close_reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- One active position per (underlying, strike, expiry) key
	CREATE UNIQUE INDEX IF NOT EXISTS idx_active_put
		ON positions(underlying, strike, expiry)
		WHERE closed_at IS NULL AND instrument = 'put';

	-- Append-only roll history; rows are never updated or deleted
	CREATE TABLE IF NOT EXISTS roll_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rolled_at DATETIME NOT NULL,
		closed_summary TEXT NOT NULL,
		opened_summary TEXT NOT NULL,
		net_cost REAL NOT NULL,
		reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// AddPosition inserts a new active position.
func (s *SQLiteStore) AddPosition(ctx context.Context, p models.HedgePosition) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO positions
			(instrument, underlying, strike, expiry, contracts, entry_premium,
			 entry_nav, shares, entry_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Instrument), p.Underlying, p.Strike, p.Expiry.Format("2006-01-02"),
		p.Contracts, p.EntryPremium, p.EntryNAV, p.Shares,
		p.EntryDate.Format("2006-01-02"))
	if err != nil {
		return 0, errors.NewStoreError("add_position", err)
	}
	return res.LastInsertId()
}

// ActivePositions returns open positions ordered by (underlying, strike, expiry).
func (s *SQLiteStore) ActivePositions(ctx context.Context) ([]models.HedgePosition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, instrument, underlying, strike, expiry, contracts,
		       entry_premium, entry_nav, shares, entry_date
		FROM positions
		WHERE closed_at IS NULL
		ORDER BY underlying, strike, expiry`)
	if err != nil {
		return nil, errors.NewStoreError("active_positions", err)
	}
	defer rows.Close()

	var positions []models.HedgePosition
	for rows.Next() {
		var p models.HedgePosition
		var instrument, expiry, entryDate string
		if err := rows.Scan(&p.ID, &instrument, &p.Underlying, &p.Strike, &expiry,
			&p.Contracts, &p.EntryPremium, &p.EntryNAV, &p.Shares, &entryDate); err != nil {
			return nil, errors.NewStoreError("active_positions", err)
		}
		p.Instrument = models.InstrumentType(instrument)
		p.Expiry, _ = time.Parse("2006-01-02", expiry)
		p.EntryDate, _ = time.Parse("2006-01-02", entryDate)
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// ClosePosition archives a position.
func (s *SQLiteStore) ClosePosition(ctx context.Context, id int64, closedAt time.Time, reason string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE positions SET closed_at = ?, close_reason = ?
		WHERE id = ? AND closed_at IS NULL`,
		closedAt.Format(time.RFC3339), reason, id)
	if err != nil {
		return errors.NewStoreError("close_position", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.ErrPositionNotFound
	}
	return nil
}

// LogRoll performs the roll in a single transaction: history row appended,
// old position archived, replacement inserted. Either all three happen or
// none do.
func (s *SQLiteStore) LogRoll(ctx context.Context, oldID int64, newPos models.HedgePosition,
	netCost float64, reason string, now time.Time) error {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("log_roll", err)
	}
	defer tx.Rollback()

	var oldSummary string
	err = tx.QueryRowContext(ctx, `
		SELECT underlying || ' ' || strike || 'P ' || expiry || ' x' || contracts
		FROM positions WHERE id = ? AND closed_at IS NULL`, oldID).Scan(&oldSummary)
	if err == sql.ErrNoRows {
		return errors.ErrPositionNotFound
	}
	if err != nil {
		return errors.NewStoreError("log_roll", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE positions SET closed_at = ?, close_reason = 'rolled'
		WHERE id = ?`, now.Format(time.RFC3339), oldID); err != nil {
		return errors.NewStoreError("log_roll", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO positions
			(instrument, underlying, strike, expiry, contracts, entry_premium,
			 entry_nav, shares, entry_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(newPos.Instrument), newPos.Underlying, newPos.Strike,
		newPos.Expiry.Format("2006-01-02"), newPos.Contracts, newPos.EntryPremium,
		newPos.EntryNAV, newPos.Shares, newPos.EntryDate.Format("2006-01-02")); err != nil {
		return errors.NewStoreError("log_roll", err)
	}

	newSummary := fmt.Sprintf("%s %.2fP %s x%d", newPos.Underlying, newPos.Strike,
		newPos.Expiry.Format("2006-01-02"), newPos.Contracts)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO roll_history (rolled_at, closed_summary, opened_summary, net_cost, reason)
		VALUES (?, ?, ?, ?, ?)`,
		now.Format(time.RFC3339), oldSummary, newSummary, netCost, reason); err != nil {
		return errors.NewStoreError("log_roll", err)
	}

	return tx.Commit()
}

// RollHistory returns the most recent roll entries, newest first.
func (s *SQLiteStore) RollHistory(ctx context.Context, limit int) ([]models.RollRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rolled_at, closed_summary, opened_summary, net_cost, COALESCE(reason, '')
		FROM roll_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewStoreError("roll_history", err)
	}
	defer rows.Close()

	var records []models.RollRecord
	for rows.Next() {
		var r models.RollRecord
		var rolledAt string
		if err := rows.Scan(&r.ID, &rolledAt, &r.ClosedSummary, &r.OpenedSummary,
			&r.NetCost, &r.Reason); err != nil {
			return nil, errors.NewStoreError("roll_history", err)
		}
		r.RolledAt, _ = time.Parse(time.RFC3339, rolledAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
