// Package synctracker computes completed/gap ranges over the set of fully
// committed milestone indices (spec §4.3). The algorithm walks the sorted
// marker set once, exactly mirroring original_source's
// MongoDb::get_sync_data: consecutive markers coalesce into a single
// completed range, and every hole between them (or at either end of the
// requested range) becomes a gap range.
package synctracker

import (
	"fmt"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// SyncData is the completed/gap report get_sync_data returns.
type SyncData struct {
	Completed []types.Range
	Gaps      []types.Range
}

// MarkerSource supplies the sorted milestone indices known to the store
// within [start, end]. pkg/storage.MongoStore does not implement it (its
// SortedMarkers also takes a context); MongoStore.GetSyncData calls
// Compute directly.
type MarkerSource interface {
	SortedMarkers(r types.Range) ([]types.MilestoneIndex, error)
}

// Compute builds a SyncData for r, using markers already sorted ascending
// and each known to lie within r — the same contract
// original_source's sync_records_sorted query provides.
//
// prunedBefore is the floor below which absence is not a gap (§10): any
// requested range is first clamped so that indices below prunedBefore
// never appear in Gaps, matching the supplemented get_sync_data vs.
// pruning_index behavior from original_source.
func Compute(r types.Range, markers []types.MilestoneIndex, prunedBefore types.MilestoneIndex) (SyncData, error) {
	if r.Start > r.End {
		return SyncData{}, fmt.Errorf("synctracker: invalid range [%d,%d]", r.Start, r.End)
	}
	if r.Start < prunedBefore {
		r.Start = prunedBefore
	}
	if r.Start > r.End {
		return SyncData{}, nil
	}

	var data SyncData
	var lastRecord *types.MilestoneIndex

	for _, idx := range markers {
		if idx < r.Start || idx > r.End {
			continue
		}
		if lastRecord != nil {
			if *lastRecord+1 < idx {
				data.Gaps = append(data.Gaps, types.Range{Start: *lastRecord + 1, End: idx - 1})
			}
		} else if r.Start < idx {
			data.Gaps = append(data.Gaps, types.Range{Start: r.Start, End: idx - 1})
		}

		if n := len(data.Completed); n > 0 && data.Completed[n-1].End+1 == idx {
			data.Completed[n-1].End = idx
		} else {
			data.Completed = append(data.Completed, types.Range{Start: idx, End: idx})
		}
		idx := idx
		lastRecord = &idx
	}

	if lastRecord != nil {
		if *lastRecord < r.End {
			data.Gaps = append(data.Gaps, types.Range{Start: *lastRecord + 1, End: r.End})
		}
	} else {
		data.Gaps = append(data.Gaps, r)
	}
	return data, nil
}

// ComputeFromSource loads sorted markers from src and runs Compute.
func ComputeFromSource(src MarkerSource, r types.Range, prunedBefore types.MilestoneIndex) (SyncData, error) {
	markers, err := src.SortedMarkers(r)
	if err != nil {
		return SyncData{}, fmt.Errorf("synctracker: loading markers: %w", err)
	}
	return Compute(r, markers, prunedBefore)
}

// IsQueryable reports whether index m has a completed marker, i.e. is safe
// for the query engine to serve reads for (spec §5's "is index m
// queryable" rule).
func IsQueryable(data SyncData, m types.MilestoneIndex) bool {
	for _, c := range data.Completed {
		if m >= c.Start && m <= c.End {
			return true
		}
	}
	return false
}
