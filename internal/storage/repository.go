package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the relational ledger.Store. Money is stored in
// cents; hours and km as decimal strings.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertTransaction(ctx, Transaction{
		ID:            tx.ID,
		Description:   tx.Description,
		AmountCents:   toCents(tx.Amount),
		Type:          string(tx.Type),
		Category:      tx.Category,
		PaymentMethod: tx.PaymentMethod,
		Date:          nullDate(tx.Date),
		Fixed:         tx.Fixed,
		CreatedAt:     formatTime(tx.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount.StringFixed(2),
		"fixed", tx.Fixed)
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.Date.String)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", row.ID, err)
		}
		txs = append(txs, core.Transaction{
			ID:            row.ID,
			Description:   row.Description,
			Amount:        fromCents(row.AmountCents),
			Type:          core.TransactionType(row.Type),
			Category:      row.Category,
			PaymentMethod: row.PaymentMethod,
			Date:          date,
			Fixed:         row.Fixed,
			CreatedAt:     parseTime(row.CreatedAt),
		})
	}
	return txs, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertGoal(ctx, Goal{
		ID:           g.ID,
		Description:  g.Description,
		Type:         string(g.Type),
		TargetCents:  toCents(g.Target),
		CurrentCents: toCents(g.Current),
		Deadline:     nullDate(g.Deadline),
		CreatedAt:    formatTime(g.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	row, err := r.queries.GetGoal(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal by id: %w", err)
	}
	return goalFromRow(row)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	goals := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := goalFromRow(row)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	n, err := r.queries.DeleteGoal(ctx, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s core.DriverSession) error {
	if err := s.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertSession(ctx, DriverSession{
		ID:            s.ID,
		Date:          s.Date.String(),
		RevenueCents:  toCents(s.Revenue),
		ExpensesCents: toCents(s.Expenses),
		Trips:         int64(s.Trips),
		Hours:         s.Hours.String(),
		Km:            s.Km.String(),
		Notes:         s.Notes,
		CreatedAt:     formatTime(s.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("upsert driver session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]core.DriverSession, error) {
	rows, err := r.queries.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list driver sessions: %w", err)
	}
	out := make([]core.DriverSession, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("driver session %s: %w", row.ID, err)
		}
		hours, err := decimal.NewFromString(row.Hours)
		if err != nil {
			return nil, fmt.Errorf("driver session %s hours: %w", row.ID, err)
		}
		km, err := decimal.NewFromString(row.Km)
		if err != nil {
			return nil, fmt.Errorf("driver session %s km: %w", row.ID, err)
		}
		out = append(out, core.DriverSession{
			ID:        row.ID,
			Date:      date,
			Revenue:   fromCents(row.RevenueCents),
			Expenses:  fromCents(row.ExpensesCents),
			Trips:     int(row.Trips),
			Hours:     hours,
			Km:        km,
			Notes:     row.Notes,
			CreatedAt: parseTime(row.CreatedAt),
		})
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	n, err := r.queries.DeleteSession(ctx, id)
	if err != nil {
		return fmt.Errorf("delete driver session: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func goalFromRow(row Goal) (core.Goal, error) {
	deadline, err := core.ParseDate(row.Deadline.String)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %s: %w", row.ID, err)
	}
	return core.Goal{
		ID:          row.ID,
		Description: row.Description,
		Type:        core.GoalType(row.Type),
		Target:      fromCents(row.TargetCents),
		Current:     fromCents(row.CurrentCents),
		Deadline:    deadline,
		CreatedAt:   parseTime(row.CreatedAt),
	}, nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func nullDate(d core.Date) sql.NullString {
	if d.IsEmpty() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
