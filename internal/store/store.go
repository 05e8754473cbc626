// Package store keeps the ordered transaction history in memory and mirrors
// it to a durable snapshot after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/record"
)

// Snapshotter is the durable side of the store. Save always receives the
// full history and must replace whatever was stored before. Load on an
// absent or empty snapshot returns no transactions and no error.
type Snapshotter interface {
	Load(ctx context.Context) ([]core.Transaction, []record.Drop, error)
	Save(ctx context.Context, txs []core.Transaction) error
}

// Store is the append-only ledger of one session.
type Store struct {
	mu   sync.RWMutex
	snap Snapshotter
	txs  []core.Transaction
	name string
}

// Open creates a store on top of snap and loads its current contents.
func Open(ctx context.Context, name string, snap Snapshotter) (*Store, error) {
	if snap == nil {
		return nil, errors.New("store: nil snapshotter")
	}
	s := &Store{snap: snap, name: name}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory history with the durable snapshot. Rows that
// cannot be read are dropped and logged, never returned as an error.
func (s *Store) Load(ctx context.Context) ([]core.Transaction, error) {
	txs, drops, err := s.snap.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s snapshot: %w", s.name, err)
	}
	if len(drops) > 0 {
		rows := make([]int, len(drops))
		for i, d := range drops {
			rows[i] = d.Row
		}
		slog.WarnContext(ctx, "Dropped unreadable ledger rows",
			log.FieldComponent, log.ComponentStorage,
			log.FieldOperation, log.OpRead,
			log.FieldBackend, s.name,
			log.FieldCount, len(drops),
			"rows", rows,
			"first_reason", drops[0].Reason)
	}

	s.mu.Lock()
	s.txs = append(make([]core.Transaction, 0, len(txs)), txs...)
	s.mu.Unlock()

	slog.DebugContext(ctx, "Ledger loaded",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpRead,
		log.FieldBackend, s.name, log.FieldCount, len(txs))
	return s.All(), nil
}

// Append adds tx and rewrites the full snapshot. When the rewrite fails the
// append is undone so memory keeps matching the durable copy. A transaction
// whose sign does not match its type is refused.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("append to %s: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Transaction, len(s.txs), len(s.txs)+1)
	copy(next, s.txs)
	next = append(next, tx)

	if err := s.snap.Save(ctx, next); err != nil {
		return fmt.Errorf("save %s snapshot: %w", s.name, err)
	}
	s.txs = next
	return nil
}

// Clear discards all history and rewrites the snapshot as empty.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.snap.Save(ctx, nil); err != nil {
		return fmt.Errorf("clear %s snapshot: %w", s.name, err)
	}
	s.txs = nil
	return nil
}

// All returns a copy of the history in insertion order.
func (s *Store) All() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Len returns the number of transactions held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Backend names the snapshot backend, e.g. "csv" or "sqlite".
func (s *Store) Backend() string {
	return s.name
}

// Close releases the snapshotter if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.snap.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
