package progress

import (
	"context"
	"time"
)

// UpdateInterval is the periodic status sampling cadence (spec.md §5).
const UpdateInterval = 1 * time.Second

// PersistFunc writes a ProjectStatus snapshot to the project's status file.
type PersistFunc func(ProjectStatus) error

// RunUpdater samples tracker's status every UpdateInterval and persists it
// via persist, until ctx is canceled. A single updater task runs per
// project, matching spec.md §5's race-free status-file-write requirement.
// It also persists one final snapshot immediately before returning.
func RunUpdater(ctx context.Context, tracker *Tracker, persist PersistFunc) {
	ticker := time.NewTicker(UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = persist(tracker.Snapshot())
			return
		case <-ticker.C:
			_ = persist(tracker.Snapshot())
		}
	}
}
