package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/poi"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// handlePoICreate implements GET /api/poi/v1/create/{blockId}.
func (s *Server) handlePoICreate(w http.ResponseWriter, r *http.Request) {
	id, err := pathBlockId(r, "blockId")
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	proof, err := s.poi.Create(r.Context(), id)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, proof)
}

type validateRequest struct {
	BlockId   types.BlockId `json:"blockId"`
	Milestone types.Milestone `json:"milestone"`
	AuditPath *poi.AuditPath `json:"auditPath"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// handlePoIValidate implements POST /api/poi/v1/validate: the client
// POSTs back exactly what /create/{blockId} returned (possibly after
// independently recomputing the audit path), and this reports whether it
// attests blockId's inclusion.
func (s *Server) handlePoIValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.log, &chronoerr.RequestError{Reason: "malformed proof body", Cause: err})
		return
	}

	proof := &poi.Proof{Milestone: req.Milestone, AuditPath: req.AuditPath}
	writeJSON(w, http.StatusOK, validateResponse{Valid: poi.ValidateProof(proof, req.BlockId)})
}
