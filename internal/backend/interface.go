// Package backend assembles a ledger session from configuration: the
// snapshot the store persists to, the event publisher, and the service that
// ties them together.
package backend

import (
	"context"

	"finledger/internal/events"
	"finledger/internal/services"
	"finledger/internal/sheets"
	"finledger/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger service and its cleanup function
type BackendResult struct {
	Ledger  *services.LedgerService
	Cleanup CleanupFunc
}

// Factory creates ledger components based on configuration
type Factory interface {
	// CreateSnapshot returns the durable side of the store.
	CreateSnapshot(ctx context.Context, config Config) (store.Snapshotter, error)
	// CreatePublisher returns the change-event publisher. It never fails
	// for an unreachable broker; events are then discarded.
	CreatePublisher(ctx context.Context, config Config) (events.Publisher, error)
	// CreateMirror returns the spreadsheet the worker copies the ledger to.
	CreateMirror(ctx context.Context, config Config) (*sheets.Snapshot, error)
	// CreateLedger wires snapshot, store, publisher and service.
	CreateLedger(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of snapshot backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// EventsType names the change-event transport.
type EventsType string

const (
	NoEvents    EventsType = "none"
	AMQPEvents  EventsType = "amqp"
	KafkaEvents EventsType = "kafka"
)

// IsValid returns true if the transport is known
func (et EventsType) IsValid() bool {
	switch et {
	case NoEvents, AMQPEvents, KafkaEvents:
		return true
	default:
		return false
	}
}
