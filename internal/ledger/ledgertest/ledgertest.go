// Package ledgertest holds the behavior every ledger.Store must share.
package ledgertest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/ledger"
)

// Run exercises newStore against the ledger port contract. Each subtest gets
// a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("transactions", func(t *testing.T) {
		s := newStore(t)
		dated := core.Transaction{
			ID: "tx-1", Description: "Aluguel do carro", Amount: decimal.RequireFromString("1480.00"),
			Type: core.Expense, Category: "Transporte", PaymentMethod: "pix",
			Date: core.NewDate(2026, 3, 5), CreatedAt: created,
		}
		fixed := core.Transaction{
			ID: "tx-2", Description: "Salário", Amount: decimal.RequireFromString("5000.50"),
			Type: core.Income, Category: "Trabalho", Fixed: true, CreatedAt: created,
		}
		for _, tx := range []core.Transaction{dated, fixed} {
			if err := s.SaveTransaction(ctx, tx); err != nil {
				t.Fatalf("SaveTransaction(%s) error = %v", tx.ID, err)
			}
		}

		dated.Amount = decimal.RequireFromString("1500")
		if err := s.SaveTransaction(ctx, dated); err != nil {
			t.Fatalf("SaveTransaction(update) error = %v", err)
		}

		got, err := s.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ListTransactions() returned %d entries, want 2", len(got))
		}
		byID := map[string]core.Transaction{}
		for _, tx := range got {
			byID[tx.ID] = tx
		}
		if tx := byID["tx-1"]; !tx.Amount.Equal(decimal.NewFromInt(1500)) || tx.Date.String() != "2026-03-05" || tx.Fixed {
			t.Errorf("tx-1 = %+v, want updated dated expense", tx)
		}
		if tx := byID["tx-2"]; !tx.Fixed || !tx.Date.IsEmpty() || tx.Type != core.Income || !tx.Amount.Equal(decimal.RequireFromString("5000.5")) {
			t.Errorf("tx-2 = %+v, want fixed income", tx)
		}

		if err := s.DeleteTransaction(ctx, "tx-1"); err != nil {
			t.Fatalf("DeleteTransaction() error = %v", err)
		}
		if err := s.DeleteTransaction(ctx, "tx-1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteTransaction(missing) error = %v, want ErrNotFound", err)
		}
		got, _ = s.ListTransactions(ctx)
		if len(got) != 1 || got[0].ID != "tx-2" {
			t.Errorf("ListTransactions() after delete = %+v, want only tx-2", got)
		}
	})

	t.Run("goals", func(t *testing.T) {
		s := newStore(t)
		g := core.NewGoal("Reserva", core.FinancialGoal, decimal.NewFromInt(10000), core.NewDate(2026, 12, 31))
		g.ID = "goal-1"
		g.CreatedAt = created
		if err := s.SaveGoal(ctx, g); err != nil {
			t.Fatalf("SaveGoal() error = %v", err)
		}

		g, _ = g.Contribute(decimal.NewFromInt(2500))
		if err := s.SaveGoal(ctx, g); err != nil {
			t.Fatalf("SaveGoal(update) error = %v", err)
		}

		got, err := s.GetGoal(ctx, "goal-1")
		if err != nil {
			t.Fatalf("GetGoal() error = %v", err)
		}
		if !got.Current.Equal(decimal.NewFromInt(2500)) || got.Deadline.String() != "2026-12-31" {
			t.Errorf("GetGoal() = %+v, want current 2500 and deadline kept", got)
		}
		if _, err := s.GetGoal(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("GetGoal(missing) error = %v, want ErrNotFound", err)
		}

		list, err := s.ListGoals(ctx)
		if err != nil || len(list) != 1 {
			t.Fatalf("ListGoals() = %v, %v, want one goal", list, err)
		}
		if err := s.DeleteGoal(ctx, "goal-1"); err != nil {
			t.Fatalf("DeleteGoal() error = %v", err)
		}
		if err := s.DeleteGoal(ctx, "goal-1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteGoal(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("sessions", func(t *testing.T) {
		s := newStore(t)
		ds := core.DriverSession{
			ID: "s-1", Date: core.NewDate(2026, 3, 7),
			Revenue: decimal.NewFromInt(300), Expenses: decimal.NewFromInt(80),
			Trips: 14, Hours: decimal.RequireFromString("8.5"), Km: decimal.NewFromInt(190),
			Notes: "sexta", CreatedAt: created,
		}
		if err := s.SaveSession(ctx, ds); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}
		list, err := s.ListSessions(ctx)
		if err != nil || len(list) != 1 {
			t.Fatalf("ListSessions() = %v, %v, want one session", list, err)
		}
		got := list[0]
		if got.Trips != 14 || !got.Hours.Equal(decimal.RequireFromString("8.5")) || got.Notes != "sexta" {
			t.Errorf("ListSessions()[0] = %+v, want stored session", got)
		}
		if err := s.DeleteSession(ctx, "s-1"); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}
		if err := s.DeleteSession(ctx, "s-1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteSession(missing) error = %v, want ErrNotFound", err)
		}
	})
}
