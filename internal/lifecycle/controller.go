// Package lifecycle implements the work-item state machine: creation,
// status transitions, checklist edits, priority and assignment. Every
// mutation follows the same shape: load, validate, commit the full record,
// then emit exactly one event. Events fire only after a successful commit so
// downstream counters never see a change that did not persist.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tdvu/chanwork/internal/eventbus"
	"github.com/tdvu/chanwork/internal/idgen"
	"github.com/tdvu/chanwork/internal/progress"
	"github.com/tdvu/chanwork/internal/storage"
	"github.com/tdvu/chanwork/internal/types"
)

// maxIDRetries bounds collision retries during creation.
const maxIDRetries = 5

// LinkResolver reports the current status of referenced items. Both storage
// backends implement it.
type LinkResolver interface {
	Statuses(ctx context.Context, ids []string) (map[string]types.Status, error)
}

// Controller coordinates all work-item mutations.
type Controller struct {
	store    storage.Store
	channels storage.ChannelDirectory
	links    LinkResolver
	bus      *eventbus.Bus
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the controller's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller over the given store and bus.
func NewController(store storage.Store, channels storage.ChannelDirectory, links LinkResolver, bus *eventbus.Bus, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		channels: channels,
		links:    links,
		bus:      bus,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRequest carries the fields for a new work item.
type CreateRequest struct {
	Kind           types.Kind
	ChannelID      string
	Title          string
	CreatorID      string
	Priority       bool
	Checklists     []types.ChecklistGroup
	ChecklistItems []types.ChecklistItem
	LinkedItemIDs  []string
	AssigneeIDs    []string
	ManagerIDs     []string
	DueAt          *time.Time
}

// Create validates and persists a new item in status new, then emits an
// item.created event.
func (c *Controller) Create(ctx context.Context, req CreateRequest) (*types.WorkItem, error) {
	now := c.now().UTC()
	item := &types.WorkItem{
		Kind:           req.Kind,
		ChannelID:      req.ChannelID,
		Title:          req.Title,
		Status:         types.StatusNew,
		CreatorID:      req.CreatorID,
		Priority:       req.Priority,
		Checklists:     req.Checklists,
		ChecklistItems: req.ChecklistItems,
		LinkedItemIDs:  req.LinkedItemIDs,
		AssigneeIDs:    req.AssigneeIDs,
		ManagerIDs:     req.ManagerIDs,
		DueAt:          req.DueAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Priority {
		item.PriorityMark = &types.Mark{By: req.CreatorID, At: now}
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if item.Kind.RequiresMembership() {
		member, err := c.channels.IsMember(ctx, item.ChannelID, item.CreatorID)
		if err != nil {
			return nil, fmt.Errorf("membership check: %w", err)
		}
		if !member {
			return nil, &UnauthorizedError{ActorID: item.CreatorID, RequiredRole: RoleMember}
		}
	}

	for nonce := 0; ; nonce++ {
		item.ID = idgen.GenerateItemID(item.Kind, item.ChannelID, item.Title, item.CreatorID, now, nonce)
		err := c.store.CreateItem(ctx, item)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrDuplicateID) || nonce >= maxIDRetries {
			return nil, err
		}
	}

	c.emit(ctx, &eventbus.Event{
		Type:      eventbus.EventItemCreated,
		ItemID:    item.ID,
		ChannelID: item.ChannelID,
		Kind:      item.Kind,
		NewStatus: item.Status,
		ActorID:   item.CreatorID,
		CreatorID: item.CreatorID,
		At:        now,
	})
	return item, nil
}

// ChangeStatus moves an item along one status edge and records the
// transition mark. A done to confirmed move is a restore: it adds a restore
// mark and keeps the earlier done mark as history.
func (c *Controller) ChangeStatus(ctx context.Context, itemID string, to types.Status, actorID string) (*types.WorkItem, error) {
	item, err := c.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	member, err := c.channels.IsMember(ctx, item.ChannelID, actorID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}

	linked, err := c.linkedStatuses(ctx, item)
	if err != nil {
		return nil, err
	}

	// The done gate covers the checklist only; linked items gate completed.
	ratio := progress.ChecklistRatio(item)
	if err := ValidateStatusChange(item, to, actorID, member, ratio, linked); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	oldStatus := item.Status
	updated := item.Clone()
	updated.Status = to
	updated.UpdatedAt = now

	mark := &types.Mark{By: actorID, At: now}
	switch to {
	case types.StatusConfirmed:
		if oldStatus == types.StatusDone {
			updated.Restored = mark
		} else {
			updated.Confirmed = mark
		}
	case types.StatusDone:
		updated.Done = mark
	case types.StatusCompleted:
		updated.Completed = mark
	}

	committed, err := c.store.UpdateItem(ctx, updated)
	if err != nil {
		return nil, err
	}

	c.emit(ctx, &eventbus.Event{
		Type:      eventbus.EventStatusChanged,
		ItemID:    committed.ID,
		ChannelID: committed.ChannelID,
		Kind:      committed.Kind,
		OldStatus: oldStatus,
		NewStatus: to,
		ActorID:   actorID,
		CreatorID: committed.CreatorID,
		At:        now,
	})
	return committed, nil
}

// TogglePriority flips the item's priority flag. Completed items are frozen.
func (c *Controller) TogglePriority(ctx context.Context, itemID, actorID string) (*types.WorkItem, error) {
	item, err := c.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == types.StatusCompleted {
		return nil, &InvalidTransitionError{From: string(item.Status), To: string(item.Status), Reason: ReasonItemFrozen}
	}

	now := c.now().UTC()
	updated := item.Clone()
	updated.Priority = !item.Priority
	updated.PriorityMark = &types.Mark{By: actorID, At: now}
	updated.UpdatedAt = now

	committed, err := c.store.UpdateItem(ctx, updated)
	if err != nil {
		return nil, err
	}

	c.emit(ctx, &eventbus.Event{
		Type:      eventbus.EventPriorityChanged,
		ItemID:    committed.ID,
		ChannelID: committed.ChannelID,
		Kind:      committed.Kind,
		ActorID:   actorID,
		CreatorID: committed.CreatorID,
		At:        now,
	})
	return committed, nil
}

// UpdateChecklistItem changes the state of one checklist entry, addressed by
// group and index. Plans keep a flat list and ignore group.
func (c *Controller) UpdateChecklistItem(ctx context.Context, itemID string, group, index int, to types.ChecklistState, actorID string) (*types.WorkItem, error) {
	item, err := c.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Kind.HasChecklist() {
		return nil, fmt.Errorf("%s items have no checklist", item.Kind)
	}

	updated := item.Clone()
	entry, err := checklistEntry(updated, group, index)
	if err != nil {
		return nil, err
	}

	member, err := c.channels.IsMember(ctx, item.ChannelID, actorID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if err := ValidateChecklistEdit(item, entry.State, to, actorID, member); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	entry.State = to
	entry.UpdatedBy = actorID
	entry.UpdatedAt = &now
	updated.UpdatedAt = now

	committed, err := c.store.UpdateItem(ctx, updated)
	if err != nil {
		return nil, err
	}

	c.emit(ctx, &eventbus.Event{
		Type:      eventbus.EventChecklistUpdated,
		ItemID:    committed.ID,
		ChannelID: committed.ChannelID,
		Kind:      committed.Kind,
		ActorID:   actorID,
		CreatorID: committed.CreatorID,
		At:        now,
	})
	return committed, nil
}

// SetAssignees replaces the assignee and manager sets. Only the creator or a
// current manager may change assignment, and only before completion.
func (c *Controller) SetAssignees(ctx context.Context, itemID string, assignees, managers []string, actorID string) (*types.WorkItem, error) {
	item, err := c.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Kind.HasChecklist() {
		return nil, fmt.Errorf("%s items cannot have assignees or managers", item.Kind)
	}
	if item.Status == types.StatusCompleted {
		return nil, &InvalidTransitionError{From: string(item.Status), To: string(item.Status), Reason: ReasonItemFrozen}
	}
	if !item.IsCreator(actorID) && !item.IsManager(actorID) {
		return nil, &UnauthorizedError{ActorID: actorID, RequiredRole: RoleCreatorOrManager}
	}

	now := c.now().UTC()
	updated := item.Clone()
	updated.AssigneeIDs = append([]string(nil), assignees...)
	updated.ManagerIDs = append([]string(nil), managers...)
	updated.UpdatedAt = now

	committed, err := c.store.UpdateItem(ctx, updated)
	if err != nil {
		return nil, err
	}

	c.emit(ctx, &eventbus.Event{
		Type:      eventbus.EventAssignmentChanged,
		ItemID:    committed.ID,
		ChannelID: committed.ChannelID,
		Kind:      committed.Kind,
		ActorID:   actorID,
		CreatorID: committed.CreatorID,
		At:        now,
	})
	return committed, nil
}

// Get returns one item by ID.
func (c *Controller) Get(ctx context.Context, itemID string) (*types.WorkItem, error) {
	return c.store.GetItem(ctx, itemID)
}

// List returns items matching the filter.
func (c *Controller) List(ctx context.Context, filter types.ItemFilter) ([]*types.WorkItem, error) {
	return c.store.ListItems(ctx, filter)
}

// Progress returns the item's completion ratio, resolving linked items.
func (c *Controller) Progress(ctx context.Context, itemID string) (float64, error) {
	item, err := c.store.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	linked, err := c.linkedStatuses(ctx, item)
	if err != nil {
		return 0, err
	}
	return progress.Ratio(item, linked), nil
}

func (c *Controller) linkedStatuses(ctx context.Context, item *types.WorkItem) (map[string]types.Status, error) {
	if item.Kind != types.KindPlan || len(item.LinkedItemIDs) == 0 {
		return nil, nil
	}
	linked, err := c.links.Statuses(ctx, item.LinkedItemIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve linked items: %w", err)
	}
	return linked, nil
}

// emit tags the event with its channel's domain and dispatches it. Dispatch
// failures are the bus's to log; the mutation already committed.
func (c *Controller) emit(ctx context.Context, ev *eventbus.Event) {
	if c.bus == nil {
		return
	}
	if technical, err := c.channels.IsTechnical(ctx, ev.ChannelID); err == nil {
		ev.Technical = technical
	}
	_ = c.bus.Dispatch(ctx, ev)
}

func checklistEntry(item *types.WorkItem, group, index int) (*types.ChecklistItem, error) {
	if item.Kind == types.KindPlan {
		if index < 0 || index >= len(item.ChecklistItems) {
			return nil, fmt.Errorf("checklist item %d: %w", index, storage.ErrNotFound)
		}
		return &item.ChecklistItems[index], nil
	}
	if group < 0 || group >= len(item.Checklists) {
		return nil, fmt.Errorf("checklist group %d: %w", group, storage.ErrNotFound)
	}
	g := &item.Checklists[group]
	if index < 0 || index >= len(g.Items) {
		return nil, fmt.Errorf("checklist item %d/%d: %w", group, index, storage.ErrNotFound)
	}
	return &g.Items[index], nil
}
