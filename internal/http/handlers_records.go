package http

import (
	"errors"
	"net/http"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/importer"
	applog "financas/internal/log"
)

// readBody parses the request body, answering 400 itself on failure.
func readBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Err(); err != nil {
		ErrorResponse(r, http.StatusBadRequest, err.Error()).Write(w)
		return nil, false
	}
	return p, true
}

func created(w http.ResponseWriter, r *http.Request, kind, id string, body any) {
	applog.LogRecordChanged(r.Context(), amqp.OpCreate, kind, id)
	NewJSONResponse().Status(http.StatusCreated).Body(body).Write(w)
}

func deleted(w http.ResponseWriter, r *http.Request, kind, id string) {
	applog.LogRecordChanged(r.Context(), amqp.OpDelete, kind, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	amount, err := p.Money("amount")
	if err != nil {
		writeError(w, r, "create_income", err)
		return
	}
	month, err := core.ParseMonthKey(p.Get("month"))
	if err != nil {
		writeError(w, r, "create_income", err)
		return
	}

	in, err := s.ledger.AddIncome(r.Context(), p.Get("description"), amount, month)
	if err != nil {
		writeError(w, r, "create_income", err)
		return
	}
	created(w, r, amqp.KindIncome, in.ID, in)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeleteIncome(r.Context(), id); err != nil {
		writeError(w, r, "delete_income", err)
		return
	}
	deleted(w, r, amqp.KindIncome, id)
}

func (s *Server) handleCreateCharge(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	amount, err := p.Money("amount")
	if err != nil {
		writeError(w, r, "create_charge", err)
		return
	}
	date, err := p.Date("date")
	if err != nil {
		writeError(w, r, "create_charge", err)
		return
	}
	installments, err := p.Int("installments", 1)
	if err != nil {
		writeError(w, r, "create_charge", err)
		return
	}

	c, err := s.ledger.AddCharge(r.Context(), p.Get("description"), amount, installments, date)
	if err != nil {
		writeError(w, r, "create_charge", err)
		return
	}
	created(w, r, amqp.KindCharge, c.ID, c)
}

func (s *Server) handleCreateStatement(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	issuer, err := core.ParseCardIssuer(p.Get("issuer"))
	if err != nil {
		writeError(w, r, "create_statement", err)
		return
	}
	amount, err := p.Money("amount")
	if err != nil {
		writeError(w, r, "create_statement", err)
		return
	}
	date, err := p.Date("date")
	if err != nil {
		writeError(w, r, "create_statement", err)
		return
	}

	c, err := s.ledger.AddStatement(r.Context(), issuer, amount, date)
	if err != nil {
		writeError(w, r, "create_statement", err)
		return
	}
	created(w, r, amqp.KindCharge, c.ID, c)
}

func (s *Server) handleDeleteCharge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeleteCharge(r.Context(), id); err != nil {
		writeError(w, r, "delete_charge", err)
		return
	}
	deleted(w, r, amqp.KindCharge, id)
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	paid, err := s.ledger.TogglePaid(r.Context(), id)
	if err != nil {
		writeError(w, r, "toggle_paid", err)
		return
	}
	applog.LogRecordChanged(r.Context(), amqp.OpUpdate, amqp.KindCharge, id)
	NewJSONResponse().Body(map[string]any{"id": id, "paid": paid}).Write(w)
}

func (s *Server) handlePartialPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	amount, err := p.Money("amount")
	if err != nil {
		writeError(w, r, "partial_payment", err)
		return
	}

	id := r.PathValue("id")
	if err := s.ledger.SetPartialPayment(r.Context(), id, amount); err != nil {
		writeError(w, r, "partial_payment", err)
		return
	}
	applog.LogRecordChanged(r.Context(), amqp.OpUpdate, amqp.KindCharge, id)
	NewJSONResponse().Body(map[string]any{"id": id, "paid": true, "paid_amount": amount}).Write(w)
}

// handleImportCharges takes the raw CSV as the body. ?charset= selects the
// file encoding, UTF-8 by default.
func (s *Server) handleImportCharges(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	content, err := importer.Decode(body, r.URL.Query().Get("charset"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(r, http.StatusRequestEntityTooLarge, "file too large").Write(w)
			return
		}
		writeError(w, r, "import_charges", err)
		return
	}

	res, err := s.ledger.ImportChargesCSV(r.Context(), content)
	if err != nil {
		writeError(w, r, "import_charges", err)
		return
	}
	applog.LogRecordChanged(r.Context(), amqp.OpReplace, amqp.KindCharge, "")
	NewJSONResponse().Body(importResponse{
		Imported: len(res.Charges),
		Skipped:  res.Skipped,
	}).Write(w)
}

type importResponse struct {
	Imported int                   `json:"imported"`
	Skipped  []importer.SkippedRow `json:"skipped"`
}

func (s *Server) handleCreateDebit(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	amount, err := p.Money("amount")
	if err != nil {
		writeError(w, r, "create_debit", err)
		return
	}
	date, err := p.Date("date")
	if err != nil {
		writeError(w, r, "create_debit", err)
		return
	}

	d, err := s.ledger.AddDebit(r.Context(), p.Get("description"), amount, date)
	if err != nil {
		writeError(w, r, "create_debit", err)
		return
	}
	created(w, r, amqp.KindDebit, d.ID, d)
}

func (s *Server) handleDeleteDebit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeleteDebit(r.Context(), id); err != nil {
		writeError(w, r, "delete_debit", err)
		return
	}
	deleted(w, r, amqp.KindDebit, id)
}
