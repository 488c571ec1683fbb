package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/ledger/memory"
)

func TestDefaultReconcileConfig(t *testing.T) {
	config := DefaultReconcileConfig()
	if config.Interval != 10*time.Minute {
		t.Errorf("expected Interval 10m, got %v", config.Interval)
	}

	p := NewReconcileProcessor(nil, nil, ReconcileConfig{}, nil)
	if p.config.Interval != 10*time.Minute {
		t.Errorf("zero Interval should default to 10m, got %v", p.config.Interval)
	}
}

func TestReconcileProcessor_Reconcile(t *testing.T) {
	ctx := context.Background()
	primary, mirror := memory.New(), memory.New()

	tx := func(id, amount string) core.Transaction {
		return core.Transaction{
			ID:          id,
			Description: "Compra " + id,
			Amount:      decimal.RequireFromString(amount),
			Type:        core.Expense,
			Category:    "Geral",
			Date:        core.NewDate(2024, 3, 1),
		}
	}

	for _, t0 := range []core.Transaction{tx("a", "10"), tx("b", "20"), tx("c", "30")} {
		if err := primary.SaveTransaction(ctx, t0); err != nil {
			t.Fatalf("SaveTransaction() error = %v", err)
		}
	}
	// a is in sync, b is stale, c is missing, z was deleted upstream
	for _, t0 := range []core.Transaction{tx("a", "10"), tx("b", "2"), tx("z", "99")} {
		if err := mirror.SaveTransaction(ctx, t0); err != nil {
			t.Fatalf("SaveTransaction() error = %v", err)
		}
	}

	p := NewReconcileProcessor(primary, mirror, DefaultReconcileConfig(), nil)
	stats, err := p.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if stats != (ReconcileStats{Upserted: 2, Deleted: 1}) {
		t.Errorf("Reconcile() = %+v, want 2 upserted and 1 deleted", stats)
	}

	got, _ := mirror.ListTransactions(ctx)
	amounts := map[string]string{}
	for _, m := range got {
		amounts[m.ID] = m.Amount.String()
	}
	want := map[string]string{"a": "10", "b": "20", "c": "30"}
	if len(amounts) != len(want) {
		t.Fatalf("mirror = %v, want %v", amounts, want)
	}
	for id, a := range want {
		if amounts[id] != a {
			t.Errorf("mirror[%s] = %s, want %s", id, amounts[id], a)
		}
	}

	stats, err = p.Reconcile(ctx)
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if stats != (ReconcileStats{}) {
		t.Errorf("second Reconcile() = %+v, want no changes", stats)
	}
}

type failingStore struct {
	*memory.Store
}

func (failingStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("quota exceeded")
}

func TestReconcileProcessor_ListFailure(t *testing.T) {
	p := NewReconcileProcessor(memory.New(), failingStore{memory.New()}, DefaultReconcileConfig(), nil)
	if _, err := p.Reconcile(context.Background()); err == nil {
		t.Error("Reconcile() expected error when the mirror cannot be listed")
	}
}

func TestReconcileProcessor_Lifecycle(t *testing.T) {
	p := NewReconcileProcessor(memory.New(), memory.New(), ReconcileConfig{Interval: time.Hour}, nil)
	ctx := context.Background()

	if p.IsRunning() {
		t.Error("processor should not be running initially")
	}
	if err := p.Stop(ctx); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Error("expected error when starting already running processor")
	}
	if !p.IsRunning() {
		t.Error("processor should be running after Start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if p.IsRunning() {
		t.Error("processor should not be running after Stop")
	}
}

func TestReconcileProcessor_ConcurrentStop(t *testing.T) {
	p := NewReconcileProcessor(memory.New(), memory.New(), ReconcileConfig{Interval: time.Hour}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.Stop(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	}
	if p.IsRunning() {
		t.Error("processor should not be running after Stop")
	}
	if err := p.Start(ctx); err != nil {
		t.Errorf("Start() after Stop error = %v", err)
	}
	if err := p.Stop(ctx); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
