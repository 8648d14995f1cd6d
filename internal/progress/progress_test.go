package progress

import (
	"testing"

	"github.com/tdvu/chanwork/internal/types"
)

func taskWith(states ...types.ChecklistState) *types.WorkItem {
	var items []types.ChecklistItem
	for _, s := range states {
		items = append(items, types.ChecklistItem{Title: "item", State: s})
	}
	return &types.WorkItem{
		ID:        "ta-1",
		Kind:      types.KindTask,
		ChannelID: "ch1",
		Title:     "t",
		Status:    types.StatusNew,
		CreatorID: "u1",
		Checklists: []types.ChecklistGroup{
			{Title: "g", Items: items},
		},
	}
}

func TestRatioTask(t *testing.T) {
	tests := []struct {
		name   string
		states []types.ChecklistState
		want   float64
	}{
		{"empty checklist is vacuously complete", nil, 1.0},
		{"all open", []types.ChecklistState{types.ItemOpen, types.ItemOpen}, 0.0},
		{"half closed", []types.ChecklistState{types.ItemClosed, types.ItemOpen}, 0.5},
		{"skipped counts as done", []types.ChecklistState{types.ItemSkipped, types.ItemClosed}, 1.0},
		{"skip request pending is not done", []types.ChecklistState{types.ItemSkipRequested}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(taskWith(tt.states...), nil)
			if got != tt.want {
				t.Errorf("Ratio() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Ratio() = %v out of [0,1]", got)
			}
		})
	}
}

func TestRatioTaskFlattensGroups(t *testing.T) {
	item := taskWith(types.ItemClosed)
	item.Checklists = append(item.Checklists, types.ChecklistGroup{
		Title: "second",
		Items: []types.ChecklistItem{
			{Title: "a", State: types.ItemOpen},
			{Title: "b", State: types.ItemOpen},
			{Title: "c", State: types.ItemClosed},
		},
	})
	if got := Ratio(item, nil); got != 0.5 {
		t.Errorf("Ratio() = %v, want 0.5", got)
	}
}

func TestRatioPlanCountsLinkedItems(t *testing.T) {
	plan := &types.WorkItem{
		ID:        "pl-1",
		Kind:      types.KindPlan,
		ChannelID: "ch1",
		Title:     "q3 maintenance",
		Status:    types.StatusNew,
		CreatorID: "u1",
		ChecklistItems: []types.ChecklistItem{
			{Title: "a", State: types.ItemClosed},
		},
		LinkedItemIDs: []string{"tr-1", "is-2"},
	}

	tests := []struct {
		name   string
		linked map[string]types.Status
		want   float64
	}{
		{"all linked open", map[string]types.Status{"tr-1": types.StatusNew, "is-2": types.StatusConfirmed}, 1.0 / 3.0},
		{"one linked done", map[string]types.Status{"tr-1": types.StatusDone, "is-2": types.StatusNew}, 2.0 / 3.0},
		{"linked completed counts", map[string]types.Status{"tr-1": types.StatusDone, "is-2": types.StatusCompleted}, 1.0},
		{"unresolved link counts as open", map[string]types.Status{"tr-1": types.StatusDone}, 2.0 / 3.0},
		{"nil map", nil, 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(plan, tt.linked); got != tt.want {
				t.Errorf("Ratio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRatioPlanEmptyIsComplete(t *testing.T) {
	plan := &types.WorkItem{
		ID: "pl-2", Kind: types.KindPlan, ChannelID: "ch1",
		Title: "empty plan", Status: types.StatusNew, CreatorID: "u1",
	}
	if got := Ratio(plan, nil); got != 1.0 {
		t.Errorf("Ratio(empty plan) = %v, want 1.0", got)
	}
	if !Complete(plan, nil) {
		t.Error("Complete(empty plan) = false, want true")
	}
}

func TestChecklistRatioIgnoresLinkedItems(t *testing.T) {
	plan := &types.WorkItem{
		ID: "pl-3", Kind: types.KindPlan, ChannelID: "ch1",
		Title: "release prep", Status: types.StatusNew, CreatorID: "u1",
		ChecklistItems: []types.ChecklistItem{
			{Title: "a", State: types.ItemClosed},
			{Title: "b", State: types.ItemOpen},
		},
		LinkedItemIDs: []string{"tr-1"},
	}
	if got := ChecklistRatio(plan); got != 0.5 {
		t.Errorf("ChecklistRatio() = %v, want 0.5", got)
	}

	plan.ChecklistItems = nil
	if got := ChecklistRatio(plan); got != 1.0 {
		t.Errorf("ChecklistRatio(no checklist) = %v, want 1.0", got)
	}
}

func TestRatioIgnoresLinksOnNonPlans(t *testing.T) {
	// A task never resolves links even if the field is populated upstream.
	item := taskWith(types.ItemClosed)
	item.LinkedItemIDs = []string{"tr-9"}
	if got := Ratio(item, map[string]types.Status{"tr-9": types.StatusNew}); got != 1.0 {
		t.Errorf("Ratio() = %v, want 1.0", got)
	}
}
