package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/record"
	"finledger/internal/store/memory"
)

func sample(desc string, amount int64, typ core.Type) core.Transaction {
	return core.Transaction{
		Timestamp:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Description: desc,
		Category:    core.Other,
		Amount:      decimal.NewFromInt(amount),
		Type:        typ,
	}
}

type droppingSnapshot struct {
	*memory.Snapshot
	drops []record.Drop
}

func (d droppingSnapshot) Load(ctx context.Context) ([]core.Transaction, []record.Drop, error) {
	txs, _, err := d.Snapshot.Load(ctx)
	return txs, d.drops, err
}

func TestOpenLoadsExistingSnapshot(t *testing.T) {
	snap := memory.New(sample("a", 1, core.Income), sample("b", -2, core.Expense))
	s, err := Open(context.Background(), "memory", snap)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "memory", s.Backend())
}

func TestOpenIgnoresDroppedRows(t *testing.T) {
	snap := droppingSnapshot{
		Snapshot: memory.New(sample("ok", 1, core.Income)),
		drops:    []record.Drop{{Row: 3, Reason: record.ReasonBadAmount}},
	}
	s, err := Open(context.Background(), "memory", snap)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestOpenEmpty(t *testing.T) {
	s, err := Open(context.Background(), "memory", memory.New())
	require.NoError(t, err)
	assert.Empty(t, s.All())
}

func TestAppendPersistsFullHistory(t *testing.T) {
	ctx := context.Background()
	snap := memory.New()
	s, err := Open(ctx, "memory", snap)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, sample("a", 1, core.Income)))
	require.NoError(t, s.Append(ctx, sample("b", -2, core.Expense)))

	persisted, _, err := snap.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.All(), persisted)
	assert.Equal(t, 2, snap.Saves())
	assert.Equal(t, "a", s.All()[0].Description)
}

func TestAppendRollsBackOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	snap := memory.New(sample("a", 1, core.Income))
	s, err := Open(ctx, "memory", snap)
	require.NoError(t, err)

	boom := errors.New("disk full")
	snap.FailSave = boom
	err = s.Append(ctx, sample("b", 2, core.Income))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Len())

	err = s.Clear(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Len())
}

func TestAppendRefusesSignMismatch(t *testing.T) {
	ctx := context.Background()
	snap := memory.New()
	s, err := Open(ctx, "memory", snap)
	require.NoError(t, err)

	err = s.Append(ctx, sample("refund", 5, core.Expense))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Zero(t, s.Len())

	txs, _, err := snap.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestClearEmptiesMemoryAndSnapshot(t *testing.T) {
	ctx := context.Background()
	snap := memory.New(sample("a", 1, core.Income), sample("b", 1, core.Savings))
	s, err := Open(ctx, "memory", snap)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Len())

	persisted, _, err := snap.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestAllReturnsCopy(t *testing.T) {
	s, err := Open(context.Background(), "memory", memory.New(sample("a", 1, core.Income)))
	require.NoError(t, err)

	got := s.All()
	got[0].Description = "mutated"
	assert.Equal(t, "a", s.All()[0].Description)
}

func TestOpenNilSnapshotter(t *testing.T) {
	_, err := Open(context.Background(), "x", nil)
	assert.Error(t, err)
}
