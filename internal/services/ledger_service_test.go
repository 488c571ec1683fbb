package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/amqp"
	"fincontrol/internal/core"
	"fincontrol/internal/ledger/memory"
)

type recordingPublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *amqp.TransactionEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) {
	c.calls++
}

var fixedNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func newTestLedger(pub EventPublisher, views Invalidator) (*LedgerService, *memory.Store) {
	store := memory.New()
	s := NewLedgerService(store, pub, views, nil)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.now = func() time.Time { return fixedNow }
	return s, store
}

func expense(desc, amount string, date core.Date) core.Transaction {
	return core.Transaction{
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        core.Expense,
		Category:    "Casa",
		Date:        date,
	}
}

func TestLedgerService_AddTransaction(t *testing.T) {
	pub := &recordingPublisher{}
	views := &countingInvalidator{}
	s, store := newTestLedger(pub, views)
	ctx := context.Background()

	got, err := s.AddTransaction(ctx, expense("Aluguel", "1500", core.NewDate(2024, 3, 5)))
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if got.ID != "id-1" {
		t.Errorf("AddTransaction() ID = %q, want id-1", got.ID)
	}
	if !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("AddTransaction() CreatedAt = %v, want %v", got.CreatedAt, fixedNow)
	}

	stored, _ := store.ListTransactions(ctx)
	if len(stored) != 1 || stored[0].ID != "id-1" {
		t.Errorf("store = %+v, want one transaction id-1", stored)
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionUpsert || pub.events[0].ID != "id-1" {
		t.Errorf("published = %+v, want one upsert of id-1", pub.events)
	}
	if views.calls != 1 {
		t.Errorf("invalidations = %d, want 1", views.calls)
	}
}

func TestLedgerService_AddTransactionFixedDropsDate(t *testing.T) {
	s, _ := newTestLedger(nil, nil)
	tx := expense("Internet", "99.90", core.NewDate(2024, 3, 5))
	tx.Fixed = true

	got, err := s.AddTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if !got.Date.IsEmpty() {
		t.Errorf("AddTransaction() Date = %v, want empty for fixed", got.Date)
	}
}

func TestLedgerService_AddTransactionValidation(t *testing.T) {
	pub := &recordingPublisher{}
	s, store := newTestLedger(pub, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"no description", expense("", "10", core.NewDate(2024, 3, 1)), core.ErrEmptyDescription},
		{"zero amount", expense("Café", "0", core.NewDate(2024, 3, 1)), core.ErrInvalidAmount},
		{"no date", expense("Café", "5", core.Date{}), core.ErrMissingDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTransaction(ctx, tt.tx)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddTransaction() error = %v, want %v", err, tt.want)
			}
		})
	}

	stored, _ := store.ListTransactions(ctx)
	if len(stored) != 0 {
		t.Errorf("store has %d transactions, want 0", len(stored))
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events, want 0", len(pub.events))
	}
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s, store := newTestLedger(pub, nil)
	ctx := context.Background()

	if _, err := s.AddTransaction(ctx, expense("Luz", "180", core.NewDate(2024, 3, 10))); err != nil {
		t.Fatalf("AddTransaction() error = %v, want nil when publish fails", err)
	}
	stored, _ := store.ListTransactions(ctx)
	if len(stored) != 1 {
		t.Errorf("store has %d transactions, want 1", len(stored))
	}
}

func TestLedgerService_DeleteTransaction(t *testing.T) {
	pub := &recordingPublisher{}
	views := &countingInvalidator{}
	s, _ := newTestLedger(pub, views)
	ctx := context.Background()

	tx, err := s.AddTransaction(ctx, expense("Gás", "120", core.NewDate(2024, 3, 2)))
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	last := pub.events[len(pub.events)-1]
	if last.Action != amqp.ActionDelete || last.ID != tx.ID {
		t.Errorf("last event = %+v, want delete of %s", last, tx.ID)
	}
	if views.calls != 2 {
		t.Errorf("invalidations = %d, want 2", views.calls)
	}

	if err := s.DeleteTransaction(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteTransaction(missing) error = %v, want %v", err, core.ErrNotFound)
	}
}

func TestLedgerService_Goals(t *testing.T) {
	s, _ := newTestLedger(nil, nil)
	ctx := context.Background()

	g, err := s.CreateGoal(ctx, "Viagem", core.FinancialGoal, decimal.NewFromInt(5000), core.NewDate(2024, 12, 31))
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}

	g, err = s.Contribute(ctx, g.ID, decimal.NewFromInt(4000))
	if err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}
	g, err = s.Contribute(ctx, g.ID, decimal.NewFromInt(4000))
	if err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}
	if !g.Current.Equal(decimal.NewFromInt(5000)) || !g.Completed() {
		t.Errorf("Contribute() Current = %v, want capped at 5000", g.Current)
	}

	if _, err := s.Contribute(ctx, g.ID, decimal.NewFromInt(-1)); !errors.Is(err, core.ErrInvalidContribution) {
		t.Errorf("Contribute(-1) error = %v, want %v", err, core.ErrInvalidContribution)
	}
	if _, err := s.Contribute(ctx, "missing", decimal.NewFromInt(1)); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Contribute(missing) error = %v, want %v", err, core.ErrNotFound)
	}

	views, err := s.ListGoals(ctx)
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	if len(views) != 1 || views[0].Status != StatusCompleted {
		t.Errorf("ListGoals() = %+v, want one completed goal", views)
	}

	if err := s.DeleteGoal(ctx, g.ID); err != nil {
		t.Errorf("DeleteGoal() error = %v", err)
	}
}

func TestLedgerService_ActivityGoalTarget(t *testing.T) {
	s, _ := newTestLedger(nil, nil)

	g, err := s.CreateGoal(context.Background(), "Inglês", core.ActivityGoal, decimal.Zero, core.Date{})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	if !g.Target.Equal(decimal.NewFromInt(100)) {
		t.Errorf("CreateGoal() Target = %v, want 100", g.Target)
	}
}

func TestLedgerService_Sessions(t *testing.T) {
	views := &countingInvalidator{}
	s, _ := newTestLedger(nil, views)
	ctx := context.Background()

	ds, err := s.AddSession(ctx, core.DriverSession{
		Date:    core.NewDate(2024, 3, 20),
		Revenue: decimal.NewFromInt(320),
		Trips:   14,
		Hours:   decimal.NewFromInt(8),
		Km:      decimal.NewFromInt(180),
	})
	if err != nil {
		t.Fatalf("AddSession() error = %v", err)
	}
	if _, err := s.AddSession(ctx, core.DriverSession{Revenue: decimal.NewFromInt(1)}); !errors.Is(err, core.ErrMissingDate) {
		t.Errorf("AddSession(no date) error = %v, want %v", err, core.ErrMissingDate)
	}

	list, err := s.ListSessions(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSessions() = %v, %v", list, err)
	}
	if err := s.DeleteSession(ctx, ds.ID); err != nil {
		t.Errorf("DeleteSession() error = %v", err)
	}
	if views.calls != 2 {
		t.Errorf("invalidations = %d, want 2", views.calls)
	}
}
