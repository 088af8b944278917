package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPut(underlying string, strike float64) models.HedgePosition {
	return models.HedgePosition{
		Instrument:   models.InstrumentPut,
		Underlying:   underlying,
		EntryDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Strike:       strike,
		Expiry:       time.Date(2026, 4, 17, 0, 0, 0, 0, time.UTC),
		Contracts:    2,
		EntryPremium: 8.4,
	}
}

func TestAddAndListPositions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddPosition(ctx, testPut("QQQ", 450))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	positions, err := s.ActivePositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)

	p := positions[0]
	assert.Equal(t, id, p.ID)
	assert.Equal(t, models.InstrumentPut, p.Instrument)
	assert.Equal(t, "QQQ", p.Underlying)
	assert.Equal(t, 450.0, p.Strike)
	assert.Equal(t, 2, p.Contracts)
	assert.Equal(t, 8.4, p.EntryPremium)
	assert.Equal(t, time.Date(2026, 4, 17, 0, 0, 0, 0, time.UTC), p.Expiry)
}

func TestActivePositionsOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddPosition(ctx, testPut("SPY", 540))
	require.NoError(t, err)
	_, err = s.AddPosition(ctx, testPut("QQQ", 460))
	require.NoError(t, err)
	_, err = s.AddPosition(ctx, testPut("QQQ", 450))
	require.NoError(t, err)

	positions, err := s.ActivePositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	assert.Equal(t, "QQQ", positions[0].Underlying)
	assert.Equal(t, 450.0, positions[0].Strike)
	assert.Equal(t, "QQQ", positions[1].Underlying)
	assert.Equal(t, 460.0, positions[1].Strike)
	assert.Equal(t, "SPY", positions[2].Underlying)
}

func TestDuplicateActivePutRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddPosition(ctx, testPut("QQQ", 450))
	require.NoError(t, err)
	_, err = s.AddPosition(ctx, testPut("QQQ", 450))
	require.Error(t, err)
}

func TestClosePosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddPosition(ctx, testPut("QQQ", 450))
	require.NoError(t, err)

	closedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.ClosePosition(ctx, id, closedAt, "took profit"))

	positions, err := s.ActivePositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)

	// Closing twice, or closing a missing id, reports not-found.
	assert.ErrorIs(t, s.ClosePosition(ctx, id, closedAt, "again"), errors.ErrPositionNotFound)
	assert.ErrorIs(t, s.ClosePosition(ctx, 999, closedAt, "nope"), errors.ErrPositionNotFound)
}

func TestClosedPositionFreesKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddPosition(ctx, testPut("QQQ", 450))
	require.NoError(t, err)
	require.NoError(t, s.ClosePosition(ctx, id, time.Now(), "roll"))

	// The partial unique index only guards open rows.
	_, err = s.AddPosition(ctx, testPut("QQQ", 450))
	assert.NoError(t, err)
}

func TestLogRollAtomicSwap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	oldID, err := s.AddPosition(ctx, testPut("QQQ", 450))
	require.NoError(t, err)

	replacement := testPut("QQQ", 425)
	replacement.Expiry = time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC)
	replacement.EntryPremium = 9.5

	now := time.Date(2026, 4, 10, 14, 30, 0, 0, time.UTC)
	require.NoError(t, s.LogRoll(ctx, oldID, replacement, 2.1, "near expiration", now))

	positions, err := s.ActivePositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 425.0, positions[0].Strike)
	assert.NotEqual(t, oldID, positions[0].ID)

	records, err := s.RollHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].ClosedSummary, "450")
	assert.Contains(t, records[0].OpenedSummary, "425")
	assert.Equal(t, 2.1, records[0].NetCost)
	assert.Equal(t, "near expiration", records[0].Reason)
	assert.Equal(t, now, records[0].RolledAt)
}

func TestLogRollMissingOldPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.LogRoll(ctx, 42, testPut("QQQ", 425), 1.0, "x", time.Now())
	assert.ErrorIs(t, err, errors.ErrPositionNotFound)

	// Nothing committed: no ghost position, no history row.
	positions, err := s.ActivePositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)
	records, err := s.RollHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRollHistoryNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		id, err := s.AddPosition(ctx, testPut("QQQ", 450+float64(i)))
		require.NoError(t, err)
		next := testPut("QQQ", 425+float64(i))
		next.Expiry = base.AddDate(0, 3, i)
		require.NoError(t, s.LogRoll(ctx, id, next, float64(i), "roll", base.AddDate(0, 0, i)))
	}

	records, err := s.RollHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].RolledAt.After(records[1].RolledAt))
}
