package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/ledger"
	"fincontrol/internal/log"
)

// ReconcileConfig holds configuration for the reconcile processor
type ReconcileConfig struct {
	// Interval is how often the mirror is compared with the primary (default: 10m)
	Interval time.Duration
}

// DefaultReconcileConfig returns sensible defaults
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{Interval: 10 * time.Minute}
}

// ReconcileStats counts what one pass changed in the mirror.
type ReconcileStats struct {
	Upserted int
	Deleted  int
	Failed   int
}

// ReconcileProcessor repairs the transaction mirror when AMQP events were
// lost: it copies what differs from the primary store and removes what the
// primary no longer has.
type ReconcileProcessor struct {
	primary ledger.TransactionStore
	mirror  ledger.TransactionStore
	config  ReconcileConfig
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReconcileProcessor(primary, mirror ledger.TransactionStore, config ReconcileConfig, logger *slog.Logger) *ReconcileProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultReconcileConfig().Interval
	}
	return &ReconcileProcessor{
		primary: primary,
		mirror:  mirror,
		config:  config,
		logger:  logger.With(log.FieldComponent, log.ComponentWorker, log.FieldOperation, log.OpMirror),
	}
}

// Start begins the reconcile loop. Returns an error if already running.
func (p *ReconcileProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("reconcile processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	p.logger.InfoContext(ctx, "Reconcile processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for the current pass. It
// is safe to call concurrently; only the first call closes the loop.
func (p *ReconcileProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.stopCh = nil
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Reconcile processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Reconcile processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ReconcileProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReconcileProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.runOnce(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *ReconcileProcessor) runOnce(ctx context.Context) {
	stats, err := p.Reconcile(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Reconcile pass failed", log.FieldError, err)
		return
	}
	if stats.Upserted+stats.Deleted+stats.Failed > 0 {
		p.logger.InfoContext(ctx, "Reconcile pass changed mirror",
			"upserted", stats.Upserted,
			"deleted", stats.Deleted,
			"failed", stats.Failed)
	}
}

// Reconcile makes one pass. Per-item failures are counted and logged; only
// listing failures abort the pass.
func (p *ReconcileProcessor) Reconcile(ctx context.Context) (ReconcileStats, error) {
	var stats ReconcileStats

	want, err := p.primary.ListTransactions(ctx)
	if err != nil {
		return stats, fmt.Errorf("list primary: %w", err)
	}
	have, err := p.mirror.ListTransactions(ctx)
	if err != nil {
		return stats, fmt.Errorf("list mirror: %w", err)
	}

	mirrored := make(map[string]core.Transaction, len(have))
	for _, tx := range have {
		mirrored[tx.ID] = tx
	}

	for _, tx := range want {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if m, ok := mirrored[tx.ID]; ok && sameTransaction(m, tx) {
			delete(mirrored, tx.ID)
			continue
		}
		delete(mirrored, tx.ID)
		if err := p.mirror.SaveTransaction(ctx, tx); err != nil {
			stats.Failed++
			p.logger.WarnContext(ctx, "Failed to mirror transaction", log.FieldID, tx.ID, log.FieldError, err)
			continue
		}
		stats.Upserted++
	}

	for id := range mirrored {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if err := p.mirror.DeleteTransaction(ctx, id); err != nil {
			stats.Failed++
			p.logger.WarnContext(ctx, "Failed to remove mirrored transaction", log.FieldID, id, log.FieldError, err)
			continue
		}
		stats.Deleted++
	}

	return stats, nil
}

// sameTransaction compares the fields a mirror stores.
func sameTransaction(a, b core.Transaction) bool {
	return a.ID == b.ID &&
		a.Description == b.Description &&
		a.Amount.Equal(b.Amount) &&
		a.Type == b.Type &&
		a.Category == b.Category &&
		a.PaymentMethod == b.PaymentMethod &&
		a.Date.String() == b.Date.String() &&
		a.Fixed == b.Fixed
}
