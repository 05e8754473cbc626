// Package events describes ledger change notifications and the publishers
// that deliver them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"finledger/internal/core"
)

// Kind names the change that happened.
type Kind string

const (
	KindAppended Kind = "transaction.appended"
	KindCleared  Kind = "ledger.cleared"
)

// LedgerEvent is published after a mutation has been persisted.
type LedgerEvent struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	// Count is the number of transactions in the ledger after the change.
	Count       int               `json:"count"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
}

// NewAppended returns the event for an appended transaction.
func NewAppended(tx core.Transaction, count int) LedgerEvent {
	return LedgerEvent{
		ID:          uuid.New(),
		Kind:        KindAppended,
		OccurredAt:  time.Now().UTC(),
		Count:       count,
		Transaction: &tx,
	}
}

// NewCleared returns the event for a bulk clear.
func NewCleared() LedgerEvent {
	return LedgerEvent{
		ID:         uuid.New(),
		Kind:       KindCleared,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event and rejects unknown kinds.
func FromJSON(data []byte) (LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return LedgerEvent{}, err
	}
	switch ev.Kind {
	case KindAppended:
		if ev.Transaction == nil {
			return LedgerEvent{}, fmt.Errorf("%s event without transaction", ev.Kind)
		}
	case KindCleared:
	default:
		return LedgerEvent{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return ev, nil
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev LedgerEvent) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, LedgerEvent) error { return nil }
func (Nop) Close() error                               { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []LedgerEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published.
func (r *Recorder) Events() []LedgerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LedgerEvent(nil), r.events...)
}
