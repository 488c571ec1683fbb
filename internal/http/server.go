package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/cache"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/log"
	"fincontrol/internal/middleware/ratelimit"
	"fincontrol/internal/middleware/security"
	"fincontrol/internal/middleware/trace"
	"fincontrol/internal/services"
)

// Ledger is the write side used by the handlers.
type Ledger interface {
	AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	CreateGoal(ctx context.Context, description string, typ core.GoalType, target decimal.Decimal, deadline core.Date) (core.Goal, error)
	Contribute(ctx context.Context, id string, amount decimal.Decimal) (core.Goal, error)
	ListGoals(ctx context.Context) ([]services.GoalView, error)
	DeleteGoal(ctx context.Context, id string) error
	AddSession(ctx context.Context, ds core.DriverSession) (core.DriverSession, error)
	ListSessions(ctx context.Context) ([]core.DriverSession, error)
	DeleteSession(ctx context.Context, id string) error
}

// Views serves the derived period views.
type Views interface {
	Month(ctx context.Context, key string) (services.Dashboard, error)
	Statement(ctx context.Context, key string) (core.Statement, error)
	DriverDay(ctx context.Context, day string) (engine.DriverMetrics, error)
	DriverMonth(ctx context.Context, key string) (engine.DriverMetrics, error)
}

// Calculator runs projections and driver economics.
type Calculator interface {
	Projection(ctx context.Context, req services.ProjectionRequest) (engine.ProjectionResult, error)
	Driver(ctx context.Context, req services.DriverRequest) (engine.DriverResult, error)
	DriverDefaults() (engine.DriverInput, error)
}

// Options wires the server to its services.
type Options struct {
	Ledger     Ledger
	Views      Views
	Calculator Calculator
	Ready      func(ctx context.Context) error // nil means always ready
	CacheStats func() cache.Stats              // feeds the cache counters in /metrics
	RateLimit  int                             // requests per minute per client
	Logger     *log.Logger
}

type appMetrics struct {
	uptime       time.Time
	transactions int64
	calculations int64
}

// Server is the JSON API.
type Server struct {
	http.Server

	ledger     Ledger
	views      Views
	calculator Calculator
	ready      func(ctx context.Context) error
	logger     *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics
	cacheStats       func() cache.Stats
}

// NewServer builds the router and middleware chain. Call Shutdown to stop
// the background goroutines even if the server never listened.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:           opts.Ledger,
		views:            opts.Views,
		calculator:       opts.Calculator,
		ready:            opts.Ready,
		logger:           logger,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		securityDetector: security.NewDetector(),
		traceMiddleware:  trace.NewMiddleware(),
		appMetrics:       &appMetrics{uptime: time.Now()},
		cacheStats:       opts.CacheStats,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/calc/projection", s.handleProjection)
	mux.HandleFunc("POST /api/calc/driver", s.handleDriverCalc)
	mux.HandleFunc("GET /api/calc/driver/defaults", s.handleDriverDefaults)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/statement", s.handleStatement)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.handleContribute)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("GET /api/driver/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/driver/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/driver/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/driver/summary", s.handleDriverSummary)

	// outermost first
	chain := []func(http.Handler) http.Handler{
		s.traceMiddleware.Middleware,
		log.Middleware(logger, trace.RequestID, s.securityDetector.ExtractClientIP),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.securityDetector.Middleware(logger.Logger),
		s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, writeRateLimited),
	}
	var handler http.Handler = mux
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains open connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.Server.Shutdown(ctx)
}
