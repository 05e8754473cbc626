// Package memory is a process-local snapshot backend. It is used for
// ephemeral sessions and as a test double for the store.
package memory

import (
	"context"
	"sync"

	"finledger/internal/core"
	"finledger/internal/record"
)

// Snapshot holds the last saved history in memory.
type Snapshot struct {
	mu    sync.Mutex
	txs   []core.Transaction
	saves int
	// FailSave, when set, is returned by Save instead of storing.
	FailSave error
}

// New returns a snapshot seeded with txs.
func New(txs ...core.Transaction) *Snapshot {
	return &Snapshot{txs: append([]core.Transaction(nil), txs...)}
}

func (s *Snapshot) Load(_ context.Context) ([]core.Transaction, []record.Drop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil, nil
}

func (s *Snapshot) Save(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.txs = append([]core.Transaction(nil), txs...)
	s.saves++
	return nil
}

// Saves reports how many successful Save calls were made.
func (s *Snapshot) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
