package types

import (
	"fmt"
	"strconv"
	"strings"
)

// SortOrder selects the direction a cursor-paginated query walks.
type SortOrder uint8

const (
	SortNewestFirst SortOrder = iota
	SortOldestFirst
)

// IndexedOutputsCursor positions a page of an indexer query (spec §4.5):
// rendered as "slot.outputId.pageSize" and compared on (slot, outputId).
type IndexedOutputsCursor struct {
	Slot     SlotIndex
	OutputId OutputId
	PageSize uint32
}

func (c IndexedOutputsCursor) String() string {
	return fmt.Sprintf("%d.%s.%d", c.Slot, c.OutputId.String(), c.PageSize)
}

// ParseIndexedOutputsCursor parses the "slot.outputId.pageSize" form.
func ParseIndexedOutputsCursor(s string) (IndexedOutputsCursor, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return IndexedOutputsCursor{}, fmt.Errorf("types: indexed-outputs cursor wants 3 fields, got %d", len(parts))
	}
	slot, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return IndexedOutputsCursor{}, fmt.Errorf("types: invalid cursor slot: %w", err)
	}
	outputId, err := ParseOutputId(parts[1])
	if err != nil {
		return IndexedOutputsCursor{}, fmt.Errorf("types: invalid cursor output id: %w", err)
	}
	pageSize, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return IndexedOutputsCursor{}, fmt.Errorf("types: invalid cursor page size: %w", err)
	}
	return IndexedOutputsCursor{
		Slot:     SlotIndex(slot),
		OutputId: outputId,
		PageSize: uint32(pageSize),
	}, nil
}

// LedgerUpdateCursor positions a page of an address/slot ledger-update
// stream (spec §4.5, §6.2): rendered as "slot.outputId.isSpent.pageSize".
type LedgerUpdateCursor struct {
	Slot     SlotIndex
	OutputId OutputId
	IsSpent  bool
	PageSize uint32
}

func (c LedgerUpdateCursor) String() string {
	return fmt.Sprintf("%d.%s.%t.%d", c.Slot, c.OutputId.String(), c.IsSpent, c.PageSize)
}

// ParseLedgerUpdateCursor parses the "slot.outputId.isSpent.pageSize" form
// used by both by-address and by-slot ledger-update endpoints. Scenario 4
// in spec §8 requires this to round-trip exactly.
func ParseLedgerUpdateCursor(s string) (LedgerUpdateCursor, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return LedgerUpdateCursor{}, fmt.Errorf("types: ledger-update cursor wants 4 fields, got %d", len(parts))
	}
	slot, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return LedgerUpdateCursor{}, fmt.Errorf("types: invalid cursor slot: %w", err)
	}
	outputId, err := ParseOutputId(parts[1])
	if err != nil {
		return LedgerUpdateCursor{}, fmt.Errorf("types: invalid cursor output id: %w", err)
	}
	isSpent, err := strconv.ParseBool(parts[2])
	if err != nil {
		return LedgerUpdateCursor{}, fmt.Errorf("types: invalid cursor isSpent: %w", err)
	}
	pageSize, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return LedgerUpdateCursor{}, fmt.Errorf("types: invalid cursor page size: %w", err)
	}
	return LedgerUpdateCursor{
		Slot:     SlotIndex(slot),
		OutputId: outputId,
		IsSpent:  isSpent,
		PageSize: uint32(pageSize),
	}, nil
}

// Range is an inclusive [Start, End] milestone/slot index range, used for
// sync-tracker completed/gap reporting (spec §4.3) and stream requests.
type Range struct {
	Start MilestoneIndex
	End   MilestoneIndex
}

func (r Range) Len() int { return int(r.End) - int(r.Start) + 1 }
