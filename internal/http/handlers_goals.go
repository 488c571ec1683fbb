package http

import (
	"net/http"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/log"
	"fincontrol/internal/services"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	views, err := s.ledger.ListGoals(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	out := make([]goalJSON, 0, len(views))
	for _, v := range views {
		out = append(out, newGoalJSON(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	deadline, err := core.ParseDate(req.Deadline)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	g, err := s.ledger.CreateGoal(r.Context(),
		sanitizeInput(req.Description),
		core.GoalType(sanitizeInput(req.Type)),
		req.Target.Decimal,
		deadline)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/goals/"+g.ID).
		Body(newGoalJSON(services.Pace(g, time.Now()))).
		Write(w)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpContribute, err)
		return
	}
	var req contributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpContribute, err)
		return
	}
	g, err := s.ledger.Contribute(r.Context(), id, req.Amount.Decimal)
	if err != nil {
		writeError(w, r, log.OpContribute, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoalJSON(services.Pace(g, time.Now())))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
