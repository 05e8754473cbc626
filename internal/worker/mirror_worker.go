// Package worker copies the primary ledger snapshot to a secondary one,
// typically a spreadsheet, whenever the ledger changes and on a schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"finledger/internal/amqp"
	"finledger/internal/events"
	"finledger/internal/log"
	"finledger/internal/store"
)

// Consumer delivers ledger events until its context is cancelled.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// Stats summarises the worker's activity.
type Stats struct {
	Syncs     int
	Failures  int
	LastSync  time.Time
	LastCount int
}

// MirrorWorker replaces the target with the full content of the source.
// The source is only ever read.
type MirrorWorker struct {
	source store.Snapshotter
	target store.Snapshotter

	// syncMu serialises mirror passes triggered by events and the schedule.
	syncMu sync.Mutex
	mu     sync.Mutex
	stats  Stats
	now    func() time.Time
}

func NewMirrorWorker(source, target store.Snapshotter) *MirrorWorker {
	return &MirrorWorker{
		source: source,
		target: target,
		now:    time.Now,
	}
}

// Sync performs one mirror pass and returns the number of transactions
// copied. Rows the source cannot decode are skipped and logged.
func (w *MirrorWorker) Sync(ctx context.Context) (int, error) {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	txs, drops, err := w.source.Load(ctx)
	if err != nil {
		w.recordFailure()
		return 0, fmt.Errorf("load source snapshot: %w", err)
	}
	for _, d := range drops {
		slog.WarnContext(ctx, "Skipping unreadable source row",
			log.FieldComponent, log.ComponentWorker,
			"row", d.Row,
			"reason", d.Reason)
	}

	if err := w.target.Save(ctx, txs); err != nil {
		w.recordFailure()
		return 0, fmt.Errorf("save mirror snapshot: %w", err)
	}

	w.mu.Lock()
	w.stats.Syncs++
	w.stats.LastSync = w.now()
	w.stats.LastCount = len(txs)
	w.mu.Unlock()

	slog.InfoContext(ctx, "Ledger mirrored",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpMirror,
		log.FieldCount, len(txs),
		"dropped", len(drops))
	return len(txs), nil
}

func (w *MirrorWorker) recordFailure() {
	w.mu.Lock()
	w.stats.Failures++
	w.mu.Unlock()
}

// HandleEvent mirrors after any ledger change. Returning an error makes the
// broker redeliver the event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev events.LedgerEvent) error {
	slog.DebugContext(ctx, "Processing ledger event",
		log.FieldComponent, log.ComponentWorker,
		"id", ev.ID,
		"kind", ev.Kind,
		log.FieldCount, ev.Count)

	_, err := w.Sync(ctx)
	return err
}

// Stats returns a copy of the counters.
func (w *MirrorWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run mirrors once at startup, then on every event from consumer and on
// schedule (a cron expression such as "@every 15m"). Either trigger may be
// disabled with a nil consumer or an empty schedule. Run returns when ctx is
// cancelled or the consumer fails.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer, schedule string) error {
	var c *cron.Cron
	if schedule != "" {
		c = cron.New()
		if _, err := c.AddFunc(schedule, func() {
			if _, err := w.Sync(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled mirror failed", log.FieldComponent, log.ComponentWorker, log.FieldError, err)
			}
		}); err != nil {
			return fmt.Errorf("invalid mirror schedule %q: %w", schedule, err)
		}
	}

	if _, err := w.Sync(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup mirror failed",
			log.FieldComponent, log.ComponentWorker,
			log.FieldOperation, log.OpStartup,
			log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			err := consumer.Consume(ctx, w.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if c != nil {
		g.Go(func() error {
			c.Start()
			slog.InfoContext(ctx, "Mirror schedule started", log.FieldComponent, log.ComponentWorker, "schedule", schedule)
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	return g.Wait()
}
