package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tdvu/chanwork/internal/storage"
	"github.com/tdvu/chanwork/internal/types"
)

func newItem(id string, kind types.Kind, channel string, status types.Status, created time.Time) *types.WorkItem {
	item := &types.WorkItem{
		ID:        id,
		Kind:      kind,
		ChannelID: channel,
		Title:     "item " + id,
		Status:    status,
		CreatorID: "u1",
		CreatedAt: created,
		UpdatedAt: created,
	}
	if status == types.StatusDone {
		item.Done = &types.Mark{By: "u1", At: created}
	}
	if status == types.StatusCompleted {
		item.Completed = &types.Mark{By: "u1", At: created}
	}
	return item
}

func TestCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	item := newItem("tr-1", types.KindTrouble, "ch1", types.StatusNew, base)
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if err := s.CreateItem(ctx, item); !errors.Is(err, storage.ErrDuplicateID) {
		t.Errorf("duplicate CreateItem error = %v, want ErrDuplicateID", err)
	}

	got, err := s.GetItem(ctx, "tr-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	// Mutating the returned copy must not affect the stored record.
	got.Title = "mutated"
	again, _ := s.GetItem(ctx, "tr-1")
	if again.Title != "item tr-1" {
		t.Error("GetItem returned a shared reference")
	}

	got.Title = "renamed"
	if _, err := s.UpdateItem(ctx, got); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	again, _ = s.GetItem(ctx, "tr-1")
	if again.Title != "renamed" {
		t.Errorf("title after update = %q", again.Title)
	}

	if _, err := s.GetItem(ctx, "tr-missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetItem(missing) error = %v, want ErrNotFound", err)
	}
	missing := newItem("tr-missing", types.KindTrouble, "ch1", types.StatusNew, base)
	if _, err := s.UpdateItem(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateItem(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListItems(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	seed := []*types.WorkItem{
		newItem("tr-1", types.KindTrouble, "ch1", types.StatusNew, base),
		newItem("tr-2", types.KindTrouble, "ch1", types.StatusDone, base.Add(time.Hour)),
		newItem("is-1", types.KindIssue, "ch1", types.StatusNew, base.Add(2*time.Hour)),
		newItem("tr-3", types.KindTrouble, "ch2", types.StatusNew, base.Add(3*time.Hour)),
	}
	for _, it := range seed {
		if err := s.CreateItem(ctx, it); err != nil {
			t.Fatalf("CreateItem(%s): %v", it.ID, err)
		}
	}

	kind := types.KindTrouble
	got, err := s.ListItems(ctx, types.ItemFilter{
		ChannelID: "ch1",
		Kind:      &kind,
		Statuses:  []types.Status{types.StatusNew, types.StatusDone},
	})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListItems len = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "tr-2" || got[1].ID != "tr-1" {
		t.Errorf("ListItems order = [%s %s], want [tr-2 tr-1]", got[0].ID, got[1].ID)
	}

	// Pagination.
	page, err := s.ListItems(ctx, types.ItemFilter{ChannelID: "ch1", Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("ListItems page: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("page 1 len = %d, want 1", len(page))
	}
}

func TestCountByStatusScopes(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.AddChannel(ctx, "ch1", true)
	_ = s.AddChannel(ctx, "ch2", false)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	items := []*types.WorkItem{
		newItem("tr-1", types.KindTrouble, "ch1", types.StatusNew, base),
		newItem("tr-2", types.KindTrouble, "ch1", types.StatusConfirmed, base),
		newItem("tr-3", types.KindTrouble, "ch1", types.StatusDone, base),
		newItem("tr-4", types.KindTrouble, "ch2", types.StatusNew, base),
	}
	items[3].CreatorID = "u2"
	for _, it := range items {
		if err := s.CreateItem(ctx, it); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	open := []types.Status{types.StatusNew, types.StatusConfirmed}

	tests := []struct {
		name  string
		scope types.Scope
		want  int
	}{
		{"channel open", types.ChannelScope("ch1"), 2},
		{"technical domain only ch1", types.TechnicalScope(), 2},
		{"user u1 across channels", types.UserScope("u1"), 2},
		{"user u2", types.UserScope("u2"), 1},
		{"empty channel", types.ChannelScope("ch9"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CountByStatus(ctx, tt.scope, types.KindTrouble, open)
			if err != nil {
				t.Fatalf("CountByStatus: %v", err)
			}
			if got != tt.want {
				t.Errorf("CountByStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMembershipAndStatuses(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.AddChannel(ctx, "ch1", true)
	_ = s.AddMember(ctx, "ch1", "u1")

	if ok, _ := s.IsMember(ctx, "ch1", "u1"); !ok {
		t.Error("u1 should be a member of ch1")
	}
	if ok, _ := s.IsMember(ctx, "ch1", "u2"); ok {
		t.Error("u2 should not be a member of ch1")
	}
	_ = s.RemoveMember(ctx, "ch1", "u1")
	if ok, _ := s.IsMember(ctx, "ch1", "u1"); ok {
		t.Error("u1 should have been removed from ch1")
	}
	if ok, _ := s.IsTechnical(ctx, "ch1"); !ok {
		t.Error("ch1 should be technical")
	}

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := s.CreateItem(ctx, newItem("tr-1", types.KindTrouble, "ch1", types.StatusDone, base)); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	statuses, err := s.Statuses(ctx, []string{"tr-1", "tr-ghost"})
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if statuses["tr-1"] != types.StatusDone {
		t.Errorf("Statuses[tr-1] = %q, want done", statuses["tr-1"])
	}
	if _, ok := statuses["tr-ghost"]; ok {
		t.Error("missing items must be omitted from Statuses")
	}
}
