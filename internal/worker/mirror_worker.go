package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fincontrol/internal/amqp"
	"fincontrol/internal/core"
	"fincontrol/internal/ledger"
	"fincontrol/internal/log"
)

const stopTimeout = 30 * time.Second

// Consumer feeds transaction events to a handler until its context ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// Reconciler repairs the mirror in the background.
type Reconciler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// MirrorWorker applies transaction events to a mirror store.
type MirrorWorker struct {
	mirror ledger.TransactionStore
	logger *slog.Logger
}

func NewMirrorWorker(mirror ledger.TransactionStore, logger *slog.Logger) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{
		mirror: mirror,
		logger: logger.With(log.FieldComponent, log.ComponentWorker),
	}
}

// HandleEvent applies one event. Deleting a transaction the mirror never
// had succeeds. A payload the domain rejects is reported as malformed so
// the broker drops it instead of redelivering.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Action {
	case amqp.ActionUpsert:
		tx, err := event.Transaction.Transaction()
		if err != nil {
			return fmt.Errorf("%w: %v", amqp.ErrMalformedEvent, err)
		}
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: %v", amqp.ErrMalformedEvent, err)
		}
		if err := w.mirror.SaveTransaction(ctx, tx); err != nil {
			return fmt.Errorf("mirror transaction %s: %w", tx.ID, err)
		}
		w.logger.InfoContext(ctx, "Mirrored transaction",
			log.NewFields().
				WithOperation(log.OpMirror).
				WithTransaction(tx.ID, tx.Description, tx.Amount, string(tx.Type), tx.Category).
				ToSlice()...)
		return nil

	case amqp.ActionDelete:
		err := w.mirror.DeleteTransaction(ctx, event.ID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			w.logger.DebugContext(ctx, "Transaction already absent from mirror", log.FieldID, event.ID)
			return nil
		case err != nil:
			return fmt.Errorf("remove mirrored transaction %s: %w", event.ID, err)
		}
		w.logger.InfoContext(ctx, "Removed mirrored transaction", log.FieldID, event.ID, log.FieldOperation, log.OpDelete)
		return nil

	default:
		return fmt.Errorf("%w: unknown action %q", amqp.ErrMalformedEvent, event.Action)
	}
}

// Run consumes events and, when reconciler is set, keeps it running until
// ctx is cancelled or the consumer fails.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer, reconciler Reconciler) error {
	g, gctx := errgroup.WithContext(ctx)

	if reconciler != nil {
		if err := reconciler.Start(gctx); err != nil {
			return fmt.Errorf("start reconciler: %w", err)
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
			defer cancel()
			return reconciler.Stop(stopCtx)
		})
	}

	g.Go(func() error {
		err := consumer.Consume(gctx, w.HandleEvent)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("consumer stopped")
		}
		return err
	})

	return g.Wait()
}
