// Package progress computes work-item completion ratios from checklist and
// linked-item state. All functions are pure and deterministic for a given
// snapshot.
package progress

import (
	"github.com/tdvu/chanwork/internal/types"
)

// Ratio returns the completion ratio of an item in [0.0, 1.0].
//
// The input set is the item's flattened checklist plus, for plans, the
// resolved linked trouble/issue items. A checklist item counts as done when
// closed or skipped; a linked item counts as done when its own status is
// done or completed. An empty input set is vacuously complete (1.0), so
// items with no sub-work are never blocked from completion.
//
// linked maps linked item IDs to their current status. A linked ID missing
// from the map counts as not done.
func Ratio(item *types.WorkItem, linked map[string]types.Status) float64 {
	var total, done int

	for _, it := range item.FlatChecklist() {
		total++
		if it.State.CountsAsDone() {
			done++
		}
	}

	if item.Kind == types.KindPlan {
		for _, id := range item.LinkedItemIDs {
			total++
			switch linked[id] {
			case types.StatusDone, types.StatusCompleted:
				done++
			}
		}
	}

	if total == 0 {
		return 1.0
	}
	return float64(done) / float64(total)
}

// Complete reports whether every sub-item of the work item is done.
func Complete(item *types.WorkItem, linked map[string]types.Status) bool {
	return Ratio(item, linked) >= 1.0
}

// ChecklistRatio returns the completion ratio over checklist items only,
// ignoring linked items. This is the gate for the done transition: a plan's
// linked items gate only its completed transition, so a plan with a finished
// (or empty) checklist may be marked done while linked work is still open.
func ChecklistRatio(item *types.WorkItem) float64 {
	var total, done int
	for _, it := range item.FlatChecklist() {
		total++
		if it.State.CountsAsDone() {
			done++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(done) / float64(total)
}
