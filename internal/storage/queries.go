package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Transaction struct {
	ID            string
	Description   string
	AmountCents   int64
	Type          string
	Category      string
	PaymentMethod string
	Date          sql.NullString
	Fixed         bool
	CreatedAt     string
}

type Goal struct {
	ID           string
	Description  string
	Type         string
	TargetCents  int64
	CurrentCents int64
	Deadline     sql.NullString
	CreatedAt    string
}

type DriverSession struct {
	ID            string
	Date          string
	RevenueCents  int64
	ExpensesCents int64
	Trips         int64
	Hours         string
	Km            string
	Notes         string
	CreatedAt     string
}

const upsertTransaction = `-- name: UpsertTransaction :exec
INSERT INTO transactions (id, description, amount_cents, type, category, payment_method, date, fixed, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    description = excluded.description,
    amount_cents = excluded.amount_cents,
    type = excluded.type,
    category = excluded.category,
    payment_method = excluded.payment_method,
    date = excluded.date,
    fixed = excluded.fixed
`

func (q *Queries) UpsertTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction,
		arg.ID,
		arg.Description,
		arg.AmountCents,
		arg.Type,
		arg.Category,
		arg.PaymentMethod,
		arg.Date,
		arg.Fixed,
		arg.CreatedAt,
	)
	return err
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, description, amount_cents, type, category, payment_method, date, fixed, created_at
FROM transactions
ORDER BY created_at, id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Description,
			&i.AmountCents,
			&i.Type,
			&i.Category,
			&i.PaymentMethod,
			&i.Date,
			&i.Fixed,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const upsertGoal = `-- name: UpsertGoal :exec
INSERT INTO goals (id, description, type, target_cents, current_cents, deadline, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    description = excluded.description,
    type = excluded.type,
    target_cents = excluded.target_cents,
    current_cents = excluded.current_cents,
    deadline = excluded.deadline
`

func (q *Queries) UpsertGoal(ctx context.Context, arg Goal) error {
	_, err := q.db.ExecContext(ctx, upsertGoal,
		arg.ID,
		arg.Description,
		arg.Type,
		arg.TargetCents,
		arg.CurrentCents,
		arg.Deadline,
		arg.CreatedAt,
	)
	return err
}

const getGoal = `-- name: GetGoal :one
SELECT id, description, type, target_cents, current_cents, deadline, created_at
FROM goals
WHERE id = ?
`

func (q *Queries) GetGoal(ctx context.Context, id string) (Goal, error) {
	row := q.db.QueryRowContext(ctx, getGoal, id)
	var i Goal
	err := row.Scan(
		&i.ID,
		&i.Description,
		&i.Type,
		&i.TargetCents,
		&i.CurrentCents,
		&i.Deadline,
		&i.CreatedAt,
	)
	return i, err
}

const listGoals = `-- name: ListGoals :many
SELECT id, description, type, target_cents, current_cents, deadline, created_at
FROM goals
ORDER BY created_at, id
`

func (q *Queries) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		var i Goal
		if err := rows.Scan(
			&i.ID,
			&i.Description,
			&i.Type,
			&i.TargetCents,
			&i.CurrentCents,
			&i.Deadline,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteGoal = `-- name: DeleteGoal :execrows
DELETE FROM goals WHERE id = ?
`

func (q *Queries) DeleteGoal(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGoal, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const upsertSession = `-- name: UpsertSession :exec
INSERT INTO driver_sessions (id, date, revenue_cents, expenses_cents, trips, hours, km, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    date = excluded.date,
    revenue_cents = excluded.revenue_cents,
    expenses_cents = excluded.expenses_cents,
    trips = excluded.trips,
    hours = excluded.hours,
    km = excluded.km,
    notes = excluded.notes
`

func (q *Queries) UpsertSession(ctx context.Context, arg DriverSession) error {
	_, err := q.db.ExecContext(ctx, upsertSession,
		arg.ID,
		arg.Date,
		arg.RevenueCents,
		arg.ExpensesCents,
		arg.Trips,
		arg.Hours,
		arg.Km,
		arg.Notes,
		arg.CreatedAt,
	)
	return err
}

const listSessions = `-- name: ListSessions :many
SELECT id, date, revenue_cents, expenses_cents, trips, hours, km, notes, created_at
FROM driver_sessions
ORDER BY date, created_at, id
`

func (q *Queries) ListSessions(ctx context.Context) ([]DriverSession, error) {
	rows, err := q.db.QueryContext(ctx, listSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DriverSession
	for rows.Next() {
		var i DriverSession
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.RevenueCents,
			&i.ExpensesCents,
			&i.Trips,
			&i.Hours,
			&i.Km,
			&i.Notes,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSession = `-- name: DeleteSession :execrows
DELETE FROM driver_sessions WHERE id = ?
`

func (q *Queries) DeleteSession(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSession, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
