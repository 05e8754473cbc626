package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/events"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/store"
)

// DefaultGoal is the savings goal used when none is configured.
var DefaultGoal = decimal.NewFromInt(1000)

// LedgerService is one user's ledger session: it normalizes input, persists
// through the store, derives reports and announces changes.
type LedgerService struct {
	store      *store.Store
	normalizer *core.Normalizer
	publisher  events.Publisher
	goal       decimal.Decimal
	now        func() time.Time
	loc        *time.Location
}

// Option customizes a LedgerService.
type Option func(*LedgerService)

// WithGoal sets the default savings goal for reports.
func WithGoal(goal decimal.Decimal) Option {
	return func(s *LedgerService) { s.goal = goal }
}

// WithClock replaces the wall clock used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithLocation pins timestamps and "today" to loc. It must match the zone
// the snapshot codec writes in, or a reload can shift calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) { s.loc = loc }
}

func NewLedgerService(st *store.Store, publisher events.Publisher, opts ...Option) *LedgerService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	s := &LedgerService{
		store:     st,
		publisher: publisher,
		goal:      DefaultGoal,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.normalizer = &core.Normalizer{Now: s.clock}
	return s
}

func (s *LedgerService) clock() time.Time {
	if s.loc != nil {
		return s.now().In(s.loc)
	}
	return s.now()
}

// Add normalizes in, appends it and publishes the change. An empty date
// means today. A publish failure is logged and does not fail the call.
func (s *LedgerService) Add(ctx context.Context, in Input) (core.Transaction, error) {
	date := in.Date
	if date.IsEmpty() {
		date = core.DateOf(s.clock())
	}
	tx := s.normalizer.Normalize(date, in.Description, in.Category.String(), in.Amount, in.Type.String())

	if err := s.store.Append(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	fields := log.NewFields().
		WithComponent(log.ComponentLedger).
		WithOperation(log.OpAppend).
		WithTransaction(tx.Type.String(), tx.Category.String(), tx.Amount.String(), tx.Date().String())
	slog.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)

	s.publish(ctx, events.NewAppended(tx, s.store.Len()))
	return tx, nil
}

// Clear discards the whole history.
func (s *LedgerService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	slog.InfoContext(ctx, "Ledger cleared",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOperation, log.OpDelete)
	s.publish(ctx, events.NewCleared())
	return nil
}

func (s *LedgerService) publish(ctx context.Context, ev events.LedgerEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldComponent, log.ComponentLedger,
			log.FieldErrorType, log.ErrorTypeNetwork,
			"kind", ev.Kind,
			"id", ev.ID,
			log.FieldError, err)
	}
}

// Transactions returns the history inside r in insertion order.
func (s *LedgerService) Transactions(r ledger.DateRange) []core.Transaction {
	all := s.store.All()
	return ledger.Filter(all, r.Resolve(all))
}

// History returns the history inside r, newest first. Entries with the same
// timestamp keep reverse insertion order.
func (s *LedgerService) History(r ledger.DateRange) []core.Transaction {
	txs := s.Transactions(r)
	slices.Reverse(txs)
	slices.SortStableFunc(txs, func(a, b core.Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return txs
}

// Report derives every view for r. Without a goal the service default
// is used.
func (s *LedgerService) Report(r ledger.DateRange, goal decimal.NullDecimal) (ledger.Report, error) {
	g := s.goal
	if goal.Valid {
		g = goal.Decimal
	}
	rep, err := ledger.Compute(s.store.All(), r, g)
	if err != nil {
		return ledger.Report{}, fmt.Errorf("compute report: %w", err)
	}
	return rep, nil
}

// Goal returns the default savings goal.
func (s *LedgerService) Goal() decimal.Decimal {
	return s.goal
}

// Count returns the total number of transactions.
func (s *LedgerService) Count() int {
	return s.store.Len()
}

// Backend names the snapshot backend in use.
func (s *LedgerService) Backend() string {
	return s.store.Backend()
}

// Close closes both the store and the publisher
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
