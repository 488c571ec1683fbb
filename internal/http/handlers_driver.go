package http

import (
	"fmt"
	"net/http"

	"fincontrol/internal/engine"
	"fincontrol/internal/log"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.ledger.ListSessions(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	out := make([]sessionJSON, 0, len(sessions))
	for _, ds := range sessions {
		out = append(out, newSessionJSON(ds))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	ds, err := req.session()
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	ds, err = s.ledger.AddSession(r.Context(), ds)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/driver/sessions/"+ds.ID).
		Body(newSessionJSON(ds)).
		Write(w)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteSession(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDriverSummary aggregates sessions for ?day=YYYY-MM-DD, or for
// ?period=YYYY-MM (default: current month). Passing both is an error.
func (s *Server) handleDriverSummary(w http.ResponseWriter, r *http.Request) {
	day, period := queryParam(r, "day"), queryParam(r, "period")
	if day != "" && period != "" {
		writeError(w, r, log.OpAggregate, fmt.Errorf("%w: use either day or period", errBadRequest))
		return
	}

	var (
		metrics engine.DriverMetrics
		err     error
	)
	if day != "" {
		metrics, err = s.views.DriverDay(r.Context(), day)
	} else {
		metrics, err = s.views.DriverMonth(r.Context(), period)
	}
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
