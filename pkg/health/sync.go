package health

import (
	"context"
	"fmt"
	"time"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// CheckTypeSyncLag checks how far behind wall-clock the store's latest
// committed slot is.
const CheckTypeSyncLag CheckType = "sync_lag"

// SyncLivenessChecker implements the /health contract (spec §6.2): healthy
// iff the latest committed slot's timestamp is within MaxLag of now.
type SyncLivenessChecker struct {
	Store  storage.Store
	MaxLag time.Duration
}

// NewSyncLivenessChecker builds a checker with the spec's default 5-minute
// staleness budget.
func NewSyncLivenessChecker(store storage.Store) *SyncLivenessChecker {
	return &SyncLivenessChecker{Store: store, MaxLag: 5 * time.Minute}
}

func (c *SyncLivenessChecker) Check(ctx context.Context) Result {
	start := time.Now()
	slot, err := c.Store.GetLatestCommittedSlot(ctx)
	if err != nil {
		return Result{Healthy: false, Message: fmt.Sprintf("reading latest committed slot: %v", err), CheckedAt: start, Duration: time.Since(start)}
	}
	if slot == nil {
		return Result{Healthy: false, Message: "no committed slot yet", CheckedAt: start, Duration: time.Since(start)}
	}

	milestone, err := c.Store.GetMilestone(ctx, types.MilestoneIndex(slot.Index))
	if err != nil || milestone == nil {
		return Result{Healthy: false, Message: "latest committed slot has no milestone record", CheckedAt: start, Duration: time.Since(start)}
	}

	committedAt := time.Unix(int64(milestone.Timestamp), 0)
	lag := time.Since(committedAt)
	healthy := lag <= c.MaxLag

	return Result{
		Healthy:   healthy,
		Message:   fmt.Sprintf("latest committed slot %d is %s old", slot.Index, lag.Round(time.Second)),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

func (c *SyncLivenessChecker) Type() CheckType { return CheckTypeSyncLag }
