package crawler

import (
	"context"
	"time"
)

// coordinate polls aggregate queue occupancy and the budget snapshot at a
// fixed interval. When no work remains anywhere, or a budget ceiling is
// out, it broadcasts termination by cancelling the run context; spiders
// observe that only at loop boundaries, never mid-item.
func (e *Engine) coordinate(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			total, depths := e.pending()
			pages, bytes := e.budget.Snapshot()
			e.log.InfoObj("queue occupancy", "queues", map[string]any{
				"depths":          depths,
				"outstanding":     total,
				"dropped":         e.dropped.Load(),
				"pages_remaining": pages,
				"bytes_remaining": bytes,
			})
			if total == 0 || pages <= 0 || bytes <= 0 {
				cancel()
				return
			}
		}
	}
}
