package httpapi

import (
	"net/http"
	"strings"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/indexer"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

type outputsResponse struct {
	Items       []types.OutputId      `json:"items"`
	NextCursor  *string                `json:"cursor,omitempty"`
	LedgerIndex types.MilestoneIndex   `json:"ledgerIndex"`
}

func (s *Server) baseFilter(r *http.Request) (types.OutputsFilter, error) {
	f := types.OutputsFilter{PageSize: queryPageSize(r, s.maxPageSize), Order: queryOrder(r)}

	if v := r.URL.Query().Get("address"); v != "" {
		addr, err := parseQueryAddress(v)
		if err != nil {
			return f, err
		}
		f.Address = &addr
	}
	if v := r.URL.Query().Get("cursor"); v != "" {
		cursor, err := types.ParseIndexedOutputsCursor(v)
		if err != nil {
			return f, &chronoerr.RequestError{Reason: "invalid cursor", Cause: err}
		}
		f.Cursor = &cursor
	}
	return f, nil
}

func parseQueryAddress(hex string) (types.Address, error) {
	id, err := types.ParseTransactionId(hex)
	if err != nil {
		return types.Address{}, &chronoerr.RequestError{Reason: "invalid address", Cause: err}
	}
	return types.Address{Kind: types.AddressEd25519, Ed25519: [32]byte(id)}, nil
}

// handleIndexerOutputs implements GET
// /api/indexer/v2/outputs/{basic|account|anchor|foundry|nft|delegation},
// dispatching on the literal kind suffix the route was registered under.
func (s *Server) handleIndexerOutputs(w http.ResponseWriter, r *http.Request) {
	base, err := s.baseFilter(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	kind := r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:]

	var (
		result indexer.OutputsResult
		qerr   error
	)

	switch kind {
	case "basic":
		result, qerr = s.engine.QueryBasicOutputs(r.Context(), types.BasicOutputsFilter{OutputsFilter: base})
	case "account":
		result, qerr = s.engine.QueryAccountOutputs(r.Context(), types.AccountOutputsFilter{OutputsFilter: base})
	case "foundry":
		result, qerr = s.engine.QueryFoundryOutputs(r.Context(), types.FoundryOutputsFilter{OutputsFilter: base})
	case "nft":
		result, qerr = s.engine.QueryNftOutputs(r.Context(), types.NftOutputsFilter{OutputsFilter: base})
	case "anchor":
		result, qerr = s.engine.QueryAnchorOutputs(r.Context(), types.AnchorOutputsFilter{OutputsFilter: base})
	case "delegation":
		result, qerr = s.engine.QueryDelegationOutputs(r.Context(), types.DelegationOutputsFilter{OutputsFilter: base})
	default:
		writeError(w, s.log, &chronoerr.MissingError{Subject: "indexer output kind " + kind})
		return
	}
	if qerr != nil {
		writeError(w, s.log, &chronoerr.StorageTransient{Cause: qerr})
		return
	}

	writeJSON(w, http.StatusOK, outputsResponse{Items: result.Items, NextCursor: result.NextCursor, LedgerIndex: result.LedgerIndex})
}
