package httpapi

import (
	"net/http"
)

type healthResponse struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// handleHealth implements GET /health (spec §6.2): 200 if the latest
// committed slot's timestamp is within the checker's staleness budget,
// else 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := s.liveness.Check(r.Context())

	status := http.StatusOK
	if !result.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Healthy: result.Healthy, Message: result.Message})
}
