package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
)

func TestNewAppended(t *testing.T) {
	tx := core.Transaction{
		Timestamp: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		Category:  core.Work,
		Amount:    decimal.NewFromInt(1000),
		Type:      core.Income,
	}
	ev := NewAppended(tx, 4)

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, KindAppended, ev.Kind)
	assert.Equal(t, 4, ev.Count)
	require.NotNil(t, ev.Transaction)
	assert.WithinDuration(t, time.Now(), ev.OccurredAt, time.Second)
}

func TestEventJSON(t *testing.T) {
	tx := core.Transaction{
		Timestamp:   time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
		Description: "Groceries",
		Category:    core.Food,
		Amount:      decimal.RequireFromString("-50.25"),
		Type:        core.Expense,
	}
	ev := NewAppended(tx, 2)

	b, err := ev.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"transaction.appended"`)
	assert.Contains(t, string(b), `"amount":"-50.25"`)

	got, err := FromJSON(b)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	assert.True(t, got.Transaction.Amount.Equal(tx.Amount))
	assert.True(t, got.Transaction.Timestamp.Equal(tx.Timestamp))

	cleared, err := NewCleared().ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(cleared), "transaction\":")
	_, err = FromJSON(cleared)
	assert.NoError(t, err)
}

func TestFromJSONRejectsInvalid(t *testing.T) {
	for name, in := range map[string]string{
		"malformed":         `{"id": 12`,
		"unknown kind":      `{"id":"6f1f7a52-1b0e-4e8e-9a57-1f0d6c1f8a11","kind":"ledger.renamed"}`,
		"append without tx": `{"id":"6f1f7a52-1b0e-4e8e-9a57-1f0d6c1f8a11","kind":"transaction.appended"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromJSON([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Publish(context.Background(), NewCleared()))
	assert.Len(t, r.Events(), 1)

	r.Err = errors.New("down")
	assert.Error(t, r.Publish(context.Background(), NewCleared()))
	assert.Len(t, r.Events(), 1)
	assert.NoError(t, Nop{}.Publish(context.Background(), NewCleared()))
}
