package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/ledger"
)

// Store keeps the ledger in process memory, in insertion order.
type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	goals    []core.Goal
	sessions []core.DriverSession
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewFromFile seeds the store with transactions read from path. Each
// non-comment line is "date;type;amount;category;description", where date
// is YYYY-MM-DD or "fixed". A missing file yields an empty store; bad lines
// are reported.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tx, err := parseSeedLine(line)
		if err != nil {
			return nil, fmt.Errorf("seed line %d: %w", n, err)
		}
		tx.ID = fmt.Sprintf("seed-%d", n)
		tx.CreatedAt = time.Now()
		s.txs = append(s.txs, tx)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return s, nil
}

func parseSeedLine(line string) (core.Transaction, error) {
	parts := strings.SplitN(line, ";", 5)
	if len(parts) != 5 {
		return core.Transaction{}, fmt.Errorf("want 5 fields, got %d", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	tx := core.Transaction{
		Type:        core.TransactionType(strings.ToLower(parts[1])),
		Category:    parts[3],
		Description: parts[4],
	}
	if strings.EqualFold(parts[0], "fixed") {
		tx.Fixed = true
	} else {
		d, err := core.ParseDate(parts[0])
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Date = d
	}
	amount, err := core.ParseAmount(parts[2])
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = amount
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = upsert(s.txs, tx, func(t core.Transaction) string { return t.ID })
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.txs, ok = remove(s.txs, id, func(t core.Transaction) string { return t.ID })
	if !ok {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) SaveGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = upsert(s.goals, g, func(g core.Goal) string { return g.ID })
	return nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, core.ErrNotFound
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.goals, ok = remove(s.goals, id, func(g core.Goal) string { return g.ID })
	if !ok {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) SaveSession(_ context.Context, ds core.DriverSession) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = upsert(s.sessions, ds, func(d core.DriverSession) string { return d.ID })
	return nil
}

func (s *Store) ListSessions(_ context.Context) ([]core.DriverSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DriverSession(nil), s.sessions...), nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.sessions, ok = remove(s.sessions, id, func(d core.DriverSession) string { return d.ID })
	if !ok {
		return core.ErrNotFound
	}
	return nil
}

func upsert[T any](items []T, v T, id func(T) string) []T {
	for i := range items {
		if id(items[i]) == id(v) {
			items[i] = v
			return items
		}
	}
	return append(items, v)
}

func remove[T any](items []T, key string, id func(T) string) ([]T, bool) {
	for i := range items {
		if id(items[i]) == key {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}
