package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fincontrol/internal/amqp"
	"fincontrol/internal/core"
	"fincontrol/internal/ledger"
	"fincontrol/internal/log"
)

// EventPublisher announces ledger writes to the mirror worker.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.TransactionEvent) error
}

// Invalidator drops derived views after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// LedgerService orchestrates writes across the store, AMQP and the
// dashboard cache. Publishing is best effort: the store is the source of truth.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
	views     Invalidator
	logger    *slog.Logger

	newID func() string
	now   func() time.Time
}

func NewLedgerService(store ledger.Store, publisher EventPublisher, views Invalidator, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		views:     views,
		logger:    logger.With(log.FieldComponent, log.ComponentLedger),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// AddTransaction assigns an ID and creation time when missing, then saves.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = s.newID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now().UTC()
	}
	if tx.Fixed {
		tx.Date = core.Date{}
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.SaveTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction saved",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(tx.ID, tx.Description, tx.Amount, string(tx.Type), tx.Category).
			ToSlice()...)

	s.publish(ctx, amqp.NewUpsertEvent(tx))
	s.invalidate(ctx)
	return tx, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldID, id)

	s.publish(ctx, amqp.NewDeleteEvent(id))
	s.invalidate(ctx)
	return nil
}

// CreateGoal stores a new goal with nothing contributed yet.
func (s *LedgerService) CreateGoal(ctx context.Context, description string, typ core.GoalType, target decimal.Decimal, deadline core.Date) (core.Goal, error) {
	g := core.NewGoal(description, typ, target, deadline)
	g.ID = s.newID()
	g.CreatedAt = s.now().UTC()
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	s.logger.InfoContext(ctx, "Goal created", log.FieldID, g.ID, "type", g.Type)
	return g, nil
}

// Contribute adds amount to a goal, capped at its target.
func (s *LedgerService) Contribute(ctx context.Context, id string, amount decimal.Decimal) (core.Goal, error) {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	g, err = g.Contribute(amount)
	if err != nil {
		return core.Goal{}, err
	}
	if err := s.store.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	s.logger.InfoContext(ctx, "Goal contribution",
		log.FieldID, id,
		log.FieldOperation, log.OpContribute,
		log.FieldAmount, amount.StringFixed(2),
		"completed", g.Completed())
	return g, nil
}

// ListGoals returns every goal with its pace as of now.
func (s *LedgerService) ListGoals(ctx context.Context) ([]GoalView, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	now := s.now()
	views := make([]GoalView, len(goals))
	for i, g := range goals {
		views[i] = Pace(g, now)
	}
	return views, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Goal deleted", log.FieldID, id)
	return nil
}

func (s *LedgerService) AddSession(ctx context.Context, ds core.DriverSession) (core.DriverSession, error) {
	if ds.ID == "" {
		ds.ID = s.newID()
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = s.now().UTC()
	}
	if err := ds.Validate(); err != nil {
		return core.DriverSession{}, err
	}
	if err := s.store.SaveSession(ctx, ds); err != nil {
		return core.DriverSession{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.InfoContext(ctx, "Driver session saved",
		log.FieldID, ds.ID,
		"date", ds.Date.String(),
		"revenue", ds.Revenue.StringFixed(2))
	s.invalidate(ctx)
	return ds, nil
}

func (s *LedgerService) ListSessions(ctx context.Context) ([]core.DriverSession, error) {
	ss, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ss, nil
}

func (s *LedgerService) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Driver session deleted", log.FieldID, id)
	s.invalidate(ctx)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.TransactionEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping event", log.FieldID, event.ID)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// the write already succeeded; the reconciler repairs the mirror
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldID, event.ID,
			"action", event.Action,
			log.FieldError, err)
	}
}

func (s *LedgerService) invalidate(ctx context.Context) {
	if s.views != nil {
		s.views.Invalidate(ctx)
	}
}
