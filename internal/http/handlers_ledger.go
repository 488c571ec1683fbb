package http

import (
	"net/http"
	"sync/atomic"

	"fincontrol/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsJSON(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	tx, err := req.transaction()
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	tx, err = s.ledger.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.transactions, 1)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Body(newTransactionJSON(tx)).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDashboard serves the month overview; period defaults to the
// current month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.views.Month(r.Context(), queryParam(r, "period"))
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	st, err := s.views.Statement(r.Context(), queryParam(r, "period"))
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, statementJSON{
		Period:  st.Period,
		Entries: transactionsJSON(st.Entries),
	})
}
