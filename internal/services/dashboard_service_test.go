package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/cache"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/ledger/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	txs := []core.Transaction{
		{ID: "1", Description: "Salário", Amount: decimal.NewFromInt(5000), Type: core.Income, Category: "Salário", Fixed: true},
		{ID: "2", Description: "Aluguel", Amount: decimal.NewFromInt(1500), Type: core.Expense, Category: "Casa", Fixed: true},
		{ID: "3", Description: "Mercado", Amount: decimal.RequireFromString("420.50"), Type: core.Expense, Category: "Alimentação", Date: core.NewDate(2024, 3, 10)},
		{ID: "4", Description: "Feira", Amount: decimal.RequireFromString("79.50"), Type: core.Expense, Category: "Alimentação", Date: core.NewDate(2024, 3, 18)},
		{ID: "5", Description: "Cinema", Amount: decimal.NewFromInt(60), Type: core.Expense, Category: "Lazer", Date: core.NewDate(2024, 2, 25)},
	}
	for _, tx := range txs {
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction() error = %v", err)
		}
	}

	sessions := []core.DriverSession{
		{ID: "s1", Date: core.NewDate(2024, 3, 18), Revenue: decimal.NewFromInt(300), Expenses: decimal.NewFromInt(100), Trips: 10, Hours: decimal.NewFromInt(8), Km: decimal.NewFromInt(200)},
		{ID: "s2", Date: core.NewDate(2024, 3, 19), Revenue: decimal.NewFromInt(200), Expenses: decimal.NewFromInt(50), Trips: 10, Hours: decimal.NewFromInt(5), Km: decimal.NewFromInt(100)},
		{ID: "s3", Date: core.NewDate(2024, 2, 1), Revenue: decimal.NewFromInt(999), Trips: 1},
	}
	for _, ds := range sessions {
		if err := store.SaveSession(ctx, ds); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}
	}
	return store
}

func newTestDashboard(t *testing.T) (*DashboardService, *cache.LRUCache[Dashboard]) {
	c := cache.NewLRUCache[Dashboard](16, time.Minute)
	s := NewDashboardService(seededStore(t), c, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }
	return s, c
}

func TestDashboardService_Month(t *testing.T) {
	s, c := newTestDashboard(t)
	ctx := context.Background()

	d, err := s.Month(ctx, "2024-03")
	if err != nil {
		t.Fatalf("Month() error = %v", err)
	}
	if !d.TotalIncome.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("TotalIncome = %v, want 5000", d.TotalIncome)
	}
	if !d.TotalExpense.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("TotalExpense = %v, want 2000", d.TotalExpense)
	}
	if !d.Balance.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Balance = %v, want 3000", d.Balance)
	}
	if d.Driver.Sessions != 2 || !d.Driver.Profit.Equal(decimal.NewFromInt(350)) {
		t.Errorf("Driver = %+v, want 2 sessions with profit 350", d.Driver)
	}
	if c.Size() != 1 {
		t.Errorf("cache size = %d, want 1", c.Size())
	}
	if _, ok := c.Get("dashboard:2024-03@2024-03"); !ok {
		t.Error("dashboard:2024-03@2024-03 not cached")
	}
}

func TestDashboardService_MonthRolloverRebuildsSeries(t *testing.T) {
	s, c := newTestDashboard(t)
	ctx := context.Background()

	before, err := s.Month(ctx, "2024-03")
	if err != nil {
		t.Fatalf("Month() error = %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC) }
	after, err := s.Month(ctx, "2024-03")
	if err != nil {
		t.Fatalf("Month() error = %v", err)
	}

	if got := before.Series[len(before.Series)-1].Key; got != "2024-03" {
		t.Errorf("series before rollover ends at %s, want 2024-03", got)
	}
	if got := after.Series[len(after.Series)-1].Key; got != "2024-04" {
		t.Errorf("series after rollover ends at %s, want 2024-04", got)
	}
	if c.Size() != 2 {
		t.Errorf("cache size = %d, want 2", c.Size())
	}
}

func TestDashboardService_MonthDefaultsToCurrent(t *testing.T) {
	s, _ := newTestDashboard(t)

	d, err := s.Month(context.Background(), "")
	if err != nil {
		t.Fatalf("Month() error = %v", err)
	}
	if d.Period != "2024-03" {
		t.Errorf("Period = %q, want 2024-03", d.Period)
	}
}

func TestDashboardService_InvalidPeriod(t *testing.T) {
	s, _ := newTestDashboard(t)

	if _, err := s.Month(context.Background(), "março"); !errors.Is(err, engine.ErrInvalidPeriod) {
		t.Errorf("Month() error = %v, want %v", err, engine.ErrInvalidPeriod)
	}
	if _, err := s.DriverDay(context.Background(), "2024-03"); !errors.Is(err, engine.ErrInvalidPeriod) {
		t.Errorf("DriverDay() error = %v, want %v", err, engine.ErrInvalidPeriod)
	}
}

func TestDashboardService_Invalidate(t *testing.T) {
	s, c := newTestDashboard(t)
	ctx := context.Background()

	if _, err := s.Month(ctx, "2024-03"); err != nil {
		t.Fatalf("Month() error = %v", err)
	}
	s.Invalidate(ctx)
	if c.Size() != 0 {
		t.Errorf("cache size after Invalidate() = %d, want 0", c.Size())
	}
}

func TestDashboardService_Driver(t *testing.T) {
	s, _ := newTestDashboard(t)
	ctx := context.Background()

	day, err := s.DriverDay(ctx, "2024-03-18")
	if err != nil {
		t.Fatalf("DriverDay() error = %v", err)
	}
	if day.Sessions != 1 || !day.RevenuePerTrip.Equal(decimal.NewFromInt(30)) {
		t.Errorf("DriverDay() = %+v, want 1 session at 30 per trip", day)
	}

	month, err := s.DriverMonth(ctx, "2024-03")
	if err != nil {
		t.Fatalf("DriverMonth() error = %v", err)
	}
	if month.Trips != 20 || !month.Revenue.Equal(decimal.NewFromInt(500)) {
		t.Errorf("DriverMonth() = %+v, want 20 trips and revenue 500", month)
	}
}

func TestDashboardService_Statement(t *testing.T) {
	s, _ := newTestDashboard(t)

	st, err := s.Statement(context.Background(), "2024-03")
	if err != nil {
		t.Fatalf("Statement() error = %v", err)
	}
	var ids []string
	for _, e := range st.Entries {
		ids = append(ids, e.ID)
	}
	want := []string{"4", "3", "1", "2"}
	if len(ids) != len(want) {
		t.Fatalf("Statement() ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Statement() ids = %v, want %v", ids, want)
			break
		}
	}
}
