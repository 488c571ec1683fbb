package http

import (
	"net/http"
	"sync/atomic"

	"fincontrol/internal/log"
	"fincontrol/internal/services"
)

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	var req services.ProjectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCalculate, err)
		return
	}
	res, err := s.calculator.Projection(r.Context(), req)
	if err != nil {
		writeError(w, r, log.OpCalculate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.calculations, 1)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDriverCalc(w http.ResponseWriter, r *http.Request) {
	var req services.DriverRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCalculate, err)
		return
	}
	res, err := s.calculator.Driver(r.Context(), req)
	if err != nil {
		writeError(w, r, log.OpCalculate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.calculations, 1)
	writeJSON(w, http.StatusOK, res)
}

// handleDriverDefaults returns the configured driver inputs in request
// form so clients can prefill and post them back.
func (s *Server) handleDriverDefaults(w http.ResponseWriter, r *http.Request) {
	in, err := s.calculator.DriverDefaults()
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, services.NewDriverRequest(in))
}
