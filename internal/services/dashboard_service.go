package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fincontrol/internal/cache"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/ledger"
	"fincontrol/internal/log"
)

const dashboardKeyPrefix = "dashboard:"

// Dashboard is the month overview: ledger totals plus the driver figures of
// the same month.
type Dashboard struct {
	engine.PeriodAggregate
	Driver engine.DriverMetrics `json:"driver"`
}

// DashboardService builds period views from the ledger and caches the
// month dashboard until the next write.
type DashboardService struct {
	store  ledger.Store
	cache  cache.Cache[Dashboard]
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboardService(store ledger.Store, c cache.Cache[Dashboard], logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		store:  store,
		cache:  c,
		logger: logger.With(log.FieldComponent, log.ComponentDashboard),
		now:    time.Now,
	}
}

// monthPeriod parses key, defaulting to the current month.
func (s *DashboardService) monthPeriod(key string) (engine.Period, error) {
	if key == "" {
		return engine.PeriodOf(s.now()), nil
	}
	return engine.MonthPeriod(key)
}

// Month returns the dashboard of the "YYYY-MM" month key.
func (s *DashboardService) Month(ctx context.Context, key string) (Dashboard, error) {
	period, err := s.monthPeriod(key)
	if err != nil {
		return Dashboard{}, err
	}

	// the six-month series ends at the current month, so it is part of the key
	now := s.now()
	cacheKey := dashboardKeyPrefix + period.Key + "@" + engine.PeriodOf(now).Key
	if s.cache != nil {
		if d, ok := s.cache.Get(cacheKey); ok {
			s.logger.DebugContext(ctx, "Dashboard cache hit", log.FieldCacheKey, cacheKey)
			return d, nil
		}
	}

	var (
		txs      []core.Transaction
		sessions []core.DriverSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sessions, err = s.store.ListSessions(gctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		PeriodAggregate: engine.Aggregate(core.Records(txs), period, now),
		Driver:          engine.DriverSummary(core.Sessions(sessions), period),
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, d)
	}
	s.logger.DebugContext(ctx, "Dashboard built",
		log.FieldPeriod, period.Key,
		"transactions", len(txs),
		"sessions", len(sessions))
	return d, nil
}

// DriverDay summarizes the sessions of one "YYYY-MM-DD" day.
func (s *DashboardService) DriverDay(ctx context.Context, day string) (engine.DriverMetrics, error) {
	period, err := engine.DayPeriod(day)
	if err != nil {
		return engine.DriverMetrics{}, err
	}
	return s.driver(ctx, period)
}

// DriverMonth summarizes the sessions of a month.
func (s *DashboardService) DriverMonth(ctx context.Context, key string) (engine.DriverMetrics, error) {
	period, err := s.monthPeriod(key)
	if err != nil {
		return engine.DriverMetrics{}, err
	}
	return s.driver(ctx, period)
}

func (s *DashboardService) driver(ctx context.Context, period engine.Period) (engine.DriverMetrics, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return engine.DriverMetrics{}, fmt.Errorf("list sessions: %w", err)
	}
	return engine.DriverSummary(core.Sessions(sessions), period), nil
}

// Statement lists the month's fixed and dated transactions, newest first.
func (s *DashboardService) Statement(ctx context.Context, key string) (core.Statement, error) {
	period, err := s.monthPeriod(key)
	if err != nil {
		return core.Statement{}, err
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Statement{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.BuildStatement(txs, period), nil
}

// Invalidate drops every cached dashboard.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Clear()
	s.logger.DebugContext(ctx, "Dashboard cache cleared")
}
