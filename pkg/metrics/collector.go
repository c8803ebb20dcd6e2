package metrics

import (
	"context"
	"time"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// Collector periodically samples the store and node to populate the
// gauges that can't be updated inline from the hot path: ingestion lag
// and the current gap count across the store's pruned-to-latest range.
type Collector struct {
	store  storage.Store
	source source.Source
	stopCh chan struct{}
}

// NewCollector builds a Collector.
func NewCollector(store storage.Store, src source.Source) *Collector {
	return &Collector{
		store:  store,
		source: src,
		stopCh: make(chan struct{}),
	}
}

// Start begins the sampling loop.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the sampling loop.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.collectIngestionLag(ctx)
	c.collectGapCount(ctx)
}

func (c *Collector) collectIngestionLag(ctx context.Context) {
	slot, err := c.store.GetLatestCommittedSlot(ctx)
	if err != nil || slot == nil {
		return
	}

	milestone, err := c.store.GetMilestone(ctx, types.MilestoneIndex(slot.Index))
	if err != nil || milestone == nil {
		return
	}

	lag := time.Since(time.Unix(int64(milestone.Timestamp), 0))
	IngestionLagSeconds.Set(lag.Seconds())
}

func (c *Collector) collectGapCount(ctx context.Context) {
	status, err := c.source.NodeStatus(ctx)
	if err != nil {
		return
	}

	r := types.Range{Start: status.PruningIndex, End: status.LatestMilestoneIndex}
	_, gaps, err := c.store.GetSyncData(ctx, r)
	if err != nil {
		return
	}

	var total int
	for _, g := range gaps {
		total += g.Len()
	}
	GapCount.Set(float64(total))
}
