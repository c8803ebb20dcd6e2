package httpapi

import (
	"math/big"
	"net/http"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

type ledgerUpdatesResponse struct {
	Items      []storage.LedgerUpdate `json:"items"`
	NextCursor *string                `json:"cursor,omitempty"`
}

func parseLedgerUpdateCursor(r *http.Request) (*types.LedgerUpdateCursor, error) {
	v := r.URL.Query().Get("cursor")
	if v == "" {
		return nil, nil
	}
	cursor, err := types.ParseLedgerUpdateCursor(v)
	if err != nil {
		return nil, &chronoerr.RequestError{Reason: "invalid cursor", Cause: err}
	}
	return &cursor, nil
}

// handleLedgerUpdatesByAddress implements GET
// /api/explorer/v3/ledger/updates/by-address/{addr}.
func (s *Server) handleLedgerUpdatesByAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "addr")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	cursor, err := parseLedgerUpdateCursor(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	pageSize := queryPageSize(r, s.maxPageSize)

	page, err := s.store.StreamLedgerUpdatesByAddress(r.Context(), addr, pageSize, cursor, queryOrder(r))
	if err != nil {
		writeError(w, s.log, &chronoerr.StorageTransient{Cause: err})
		return
	}

	writeJSON(w, http.StatusOK, ledgerUpdatesResponse{Items: page.Items, NextCursor: page.NextCursor})
}

// handleLedgerUpdatesBySlot implements GET
// /api/explorer/v3/ledger/updates/by-slot/{idx}.
func (s *Server) handleLedgerUpdatesBySlot(w http.ResponseWriter, r *http.Request) {
	slot, err := pathSlotIndex(r, "idx")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	cursor, err := parseLedgerUpdateCursor(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	pageSize := queryPageSize(r, s.maxPageSize)

	page, err := s.store.StreamLedgerUpdatesBySlot(r.Context(), slot, pageSize, cursor)
	if err != nil {
		writeError(w, s.log, &chronoerr.StorageTransient{Cause: err})
		return
	}

	writeJSON(w, http.StatusOK, ledgerUpdatesResponse{Items: page.Items, NextCursor: page.NextCursor})
}

type balanceResponse struct {
	TotalBalance     string             `json:"totalBalance"`
	AvailableBalance string             `json:"availableBalance"`
	LedgerIndex      types.MilestoneIndex `json:"ledgerIndex"`
}

// handleBalance implements GET /api/explorer/v3/balance/{addr}. Chronicle
// tracks a single running balance per address (spec §4.5); it has no rent
// or expiration-unlock accounting, so availableBalance always equals
// totalBalance.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "addr")
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	amount, err := s.store.GetBalance(r.Context(), addr)
	if err != nil {
		writeError(w, s.log, &chronoerr.StorageTransient{Cause: err})
		return
	}

	var ledgerIndex types.MilestoneIndex
	slot, err := s.store.GetLatestCommittedSlot(r.Context())
	if err != nil {
		writeError(w, s.log, &chronoerr.StorageTransient{Cause: err})
		return
	}
	if slot != nil {
		ledgerIndex = types.MilestoneIndex(slot.Index)
	}

	total := new(big.Int).SetBytes(amount[:]).String()
	writeJSON(w, http.StatusOK, balanceResponse{TotalBalance: total, AvailableBalance: total, LedgerIndex: ledgerIndex})
}

type childrenResponse struct {
	Children []types.BlockId `json:"children"`
}

// handleBlockChildren implements GET
// /api/explorer/v3/blocks/{id}/children.
func (s *Server) handleBlockChildren(w http.ResponseWriter, r *http.Request) {
	id, err := pathBlockId(r, "id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	children, err := s.store.GetBlockChildren(r.Context(), id)
	if err != nil {
		writeError(w, s.log, &chronoerr.StorageTransient{Cause: err})
		return
	}

	writeJSON(w, http.StatusOK, childrenResponse{Children: children})
}
