package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/gapfiller"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// GapFillerConfig resolves inx.sync_kind ("from(i)" or "max(n)") into a
// gapfiller.Config, the boundary between this package's string-based
// config surface and the gap filler's typed policy.
func (c Config) GapFillerConfig() (gapfiller.Config, error) {
	cfg := gapfiller.Config{
		MaxParallelRequests: c.INX.MaxParallelRequests,
		RetryDelay:          c.INX.RetryDelay,
	}

	kind := strings.TrimSpace(string(c.INX.SyncKind))
	switch {
	case strings.HasPrefix(kind, "from(") && strings.HasSuffix(kind, ")"):
		n, err := strconv.ParseUint(kind[len("from("):len(kind)-1], 10, 32)
		if err != nil {
			return gapfiller.Config{}, fmt.Errorf("config: invalid inx.sync_kind %q: %w", kind, err)
		}
		cfg.Mode = gapfiller.ModeFromIndex
		cfg.FromIndex = types.MilestoneIndex(n)
	case strings.HasPrefix(kind, "max(") && strings.HasSuffix(kind, ")"):
		n, err := strconv.ParseUint(kind[len("max("):len(kind)-1], 10, 32)
		if err != nil {
			return gapfiller.Config{}, fmt.Errorf("config: invalid inx.sync_kind %q: %w", kind, err)
		}
		cfg.Mode = gapfiller.ModeMaxBehind
		cfg.MaxBehind = types.MilestoneIndex(n)
	default:
		return gapfiller.Config{}, fmt.Errorf("config: inx.sync_kind must be from(i) or max(n), got %q", kind)
	}

	return cfg, nil
}
