package httpapi

import (
	"net/http"
	"strconv"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

func pathBlockId(r *http.Request, name string) (types.BlockId, error) {
	id, err := types.ParseBlockId(r.PathValue(name))
	if err != nil {
		return types.BlockId{}, &chronoerr.RequestError{Reason: "invalid block id", Cause: err}
	}
	return id, nil
}

func pathOutputId(r *http.Request, name string) (types.OutputId, error) {
	id, err := types.ParseOutputId(r.PathValue(name))
	if err != nil {
		return types.OutputId{}, &chronoerr.RequestError{Reason: "invalid output id", Cause: err}
	}
	return id, nil
}

func pathMilestoneIndex(r *http.Request, name string) (types.MilestoneIndex, error) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil {
		return 0, &chronoerr.RequestError{Reason: "invalid milestone index", Cause: err}
	}
	return types.MilestoneIndex(n), nil
}

func pathSlotIndex(r *http.Request, name string) (types.SlotIndex, error) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil {
		return 0, &chronoerr.RequestError{Reason: "invalid slot index", Cause: err}
	}
	return types.SlotIndex(n), nil
}

// pathAddress parses {addr} as a bare 32-byte hex value into an Ed25519
// address. Typed (bech32-wrapped) address parsing belongs to the external
// router this package's handlers are deliberately thin relative to.
func pathAddress(r *http.Request, name string) (types.Address, error) {
	var addr types.Address
	id, err := types.ParseTransactionId(r.PathValue(name)) // reuses the 32-byte hex parser
	if err != nil {
		return types.Address{}, &chronoerr.RequestError{Reason: "invalid address", Cause: err}
	}
	addr.Kind = types.AddressEd25519
	addr.Ed25519 = [32]byte(id)
	return addr, nil
}

func queryPageSize(r *http.Request, max uint32) uint32 {
	v := r.URL.Query().Get("pageSize")
	if v == "" {
		return max
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil || uint32(n) > max || n == 0 {
		return max
	}
	return uint32(n)
}

func queryOrder(r *http.Request) types.SortOrder {
	if r.URL.Query().Get("sort") == "asc" {
		return types.SortOldestFirst
	}
	return types.SortNewestFirst
}
