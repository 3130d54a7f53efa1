package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/importer"
	applog "financas/internal/log"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"
)

// Ledger is the part of the ledger service the API exposes.
type Ledger interface {
	Snapshot(ctx context.Context) (core.Snapshot, error)
	AddIncome(ctx context.Context, description string, amount core.Money, month core.MonthKey) (core.Income, error)
	DeleteIncome(ctx context.Context, id string) error
	AddCharge(ctx context.Context, description string, total core.Money, installments int, start core.Date) (core.CardCharge, error)
	AddStatement(ctx context.Context, issuer core.CardIssuer, amount core.Money, date core.Date) (core.CardCharge, error)
	DeleteCharge(ctx context.Context, id string) error
	TogglePaid(ctx context.Context, id string) (bool, error)
	SetPartialPayment(ctx context.Context, id string, amount core.Money) error
	AddDebit(ctx context.Context, description string, amount core.Money, date core.Date) (core.DebitExpense, error)
	DeleteDebit(ctx context.Context, id string) error
	ImportChargesCSV(ctx context.Context, content string) (importer.Result, error)
	Balances(ctx context.Context, months int) ([]core.MonthlyBalance, error)
	MonthsPresent(ctx context.Context) ([]core.MonthlyBalance, error)
	Feasibility(ctx context.Context, month core.MonthKey, months int) (core.PaymentFeasibility, error)
	Dashboard(ctx context.Context, now time.Time, months int) (services.Dashboard, error)
	ProjectionReport(ctx context.Context, now time.Time, months int) ([]byte, error)
}

var _ Ledger = (*services.LedgerService)(nil)

// Config holds what the server needs besides the ledger.
type Config struct {
	Addr string
	// ProjectionMonths is the default ?months= window.
	ProjectionMonths int
	Logger           *applog.Logger
	// Ready, when set, is checked by /readyz.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger       Ledger
	months       int
	ready        func(ctx context.Context) error
	now          func() time.Time
	trace        *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(cfg Config, ledger Ledger) *Server {
	months := cfg.ProjectionMonths
	if months < 1 {
		months = 6
	}
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		ledger: ledger,
		months: months,
		ready:  cfg.Ready,
		now:    time.Now,
		trace:  trace.NewMiddleware(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/balances", s.handleBalances)
	mux.HandleFunc("GET /api/months", s.handleMonths)
	mux.HandleFunc("GET /api/feasibility", s.handleFeasibility)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/report.xlsx", s.handleReport)

	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("POST /api/charges", s.handleCreateCharge)
	mux.HandleFunc("POST /api/charges/import", s.handleImportCharges)
	mux.HandleFunc("POST /api/statements", s.handleCreateStatement)
	mux.HandleFunc("DELETE /api/charges/{id}", s.handleDeleteCharge)
	mux.HandleFunc("POST /api/charges/{id}/toggle-paid", s.handleTogglePaid)
	mux.HandleFunc("POST /api/charges/{id}/partial-payment", s.handlePartialPayment)

	mux.HandleFunc("POST /api/debits", s.handleCreateDebit)
	mux.HandleFunc("DELETE /api/debits/{id}", s.handleDeleteDebit)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = applog.AccessLogMiddleware(handler)
	handler = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.InfoContext(ctx, "Shutting down HTTP server", "requests_served", s.trace.TotalRequests())
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
