// Package store provides persistence for hedge positions and roll history.
package store

import (
	"context"
	"time"

	"portfolio-hedger/internal/models"
)

// PositionStore is the persistence contract for the rolling tracker. The
// active-position collection is exclusively owned by this store; analysis
// calls only ever read it.
//
// The store assumes single-writer usage per session. Concurrent writers from
// two sessions are an accepted, documented limitation; no cross-process
// locking is attempted.
type PositionStore interface {
	// AddPosition inserts a new active position.
	AddPosition(ctx context.Context, p models.HedgePosition) (int64, error)

	// ActivePositions returns open positions ordered by
	// (underlying, strike, expiry) for deterministic reports.
	ActivePositions(ctx context.Context) ([]models.HedgePosition, error)

	// ClosePosition archives a position. Archival is terminal.
	ClosePosition(ctx context.Context, id int64, closedAt time.Time, reason string) error

	// LogRoll appends an immutable roll-history entry and atomically swaps
	// the old position for the new one in the active store.
	LogRoll(ctx context.Context, oldID int64, newPos models.HedgePosition,
		netCost float64, reason string, now time.Time) error

	// RollHistory returns the most recent roll entries, newest first.
	RollHistory(ctx context.Context, limit int) ([]models.RollRecord, error)

	Close() error
}
