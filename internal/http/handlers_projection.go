package http

import (
	"fmt"
	"net/http"

	"financas/internal/core"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, "snapshot", err)
		return
	}
	NewJSONResponse().Body(snap).Write(w)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonths(r.URL.Query(), s.months)
	if err != nil {
		writeError(w, r, "balances", err)
		return
	}
	balances, err := s.ledger.Balances(r.Context(), months)
	if err != nil {
		writeError(w, r, "balances", err)
		return
	}
	NewJSONResponse().Body(balances).Write(w)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.MonthsPresent(r.Context())
	if err != nil {
		writeError(w, r, "months", err)
		return
	}
	NewJSONResponse().Body(balances).Write(w)
}

// handleFeasibility evaluates ?month= (the current month by default) against
// the ?months= months that follow it.
func (s *Server) handleFeasibility(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	month, err := parseMonthKey(query, core.MonthKeyOf(s.now()))
	if err != nil {
		writeError(w, r, "feasibility", err)
		return
	}
	months, err := parseMonths(query, s.months)
	if err != nil {
		writeError(w, r, "feasibility", err)
		return
	}

	pf, err := s.ledger.Feasibility(r.Context(), month, months)
	if err != nil {
		writeError(w, r, "feasibility", err)
		return
	}
	NewJSONResponse().Body(pf).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonths(r.URL.Query(), s.months)
	if err != nil {
		writeError(w, r, "dashboard", err)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), s.now(), months)
	if err != nil {
		writeError(w, r, "dashboard", err)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonths(r.URL.Query(), s.months)
	if err != nil {
		writeError(w, r, "report", err)
		return
	}
	now := s.now()
	b, err := s.ledger.ProjectionReport(r.Context(), now, months)
	if err != nil {
		writeError(w, r, "report", err)
		return
	}

	filename := fmt.Sprintf("projecao-%s.xlsx", core.MonthKeyOf(now))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
