// Package ledger declares the persistence ports for transactions, goals and
// driver sessions. Implementations live in the memory, sheets and dynamo
// subpackages and in internal/storage.
package ledger

import (
	"context"

	"fincontrol/internal/core"
)

// Ports for outbound adapters. Save methods upsert by ID. Get and Delete
// return core.ErrNotFound for an unknown ID.
type (
	TransactionStore interface {
		SaveTransaction(ctx context.Context, tx core.Transaction) error
		// ListTransactions returns every transaction, fixed ones included.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	GoalStore interface {
		SaveGoal(ctx context.Context, g core.Goal) error
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		ListGoals(ctx context.Context) ([]core.Goal, error)
		DeleteGoal(ctx context.Context, id string) error
	}

	SessionStore interface {
		SaveSession(ctx context.Context, s core.DriverSession) error
		ListSessions(ctx context.Context) ([]core.DriverSession, error)
		DeleteSession(ctx context.Context, id string) error
	}

	Store interface {
		TransactionStore
		GoalStore
		SessionStore
	}
)
