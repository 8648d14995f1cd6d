// Package types defines core data structures for the chanwork work-item tracker.
package types

import (
	"fmt"
	"time"
)

// Kind categorizes a work item.
type Kind string

// Work item kind constants
const (
	KindTrouble Kind = "trouble"
	KindIssue   Kind = "issue"
	KindPlan    Kind = "plan"
	KindTask    Kind = "task"
)

// Kinds returns all valid kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindTrouble, KindIssue, KindPlan, KindTask}
}

// IsValid checks if the kind value is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindTrouble, KindIssue, KindPlan, KindTask:
		return true
	}
	return false
}

// HasChecklist returns true for kinds whose completion is gated by sub-items.
func (k Kind) HasChecklist() bool {
	return k == KindPlan || k == KindTask
}

// RequiresMembership returns true for kinds whose status changes demand
// current channel membership. Trouble/Issue items accept transitions from
// non-members so that cross-channel links stay actionable.
func (k Kind) RequiresMembership() bool {
	return k == KindPlan || k == KindTask
}

// Status represents the lifecycle state of a work item
type Status string

// Work item status constants
const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusDone      Status = "done"
	StatusCompleted Status = "completed"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusConfirmed, StatusDone, StatusCompleted:
		return true
	}
	return false
}

// Terminal returns true when no forward transition exists from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Bucket is the coarse status grouping used for aggregate counters.
type Bucket string

// Counter bucket constants
const (
	BucketOpen          Bucket = "open"
	BucketPendingReview Bucket = "pending_review"
	BucketCompleted     Bucket = "completed"
)

// Buckets returns all buckets in a stable order.
func Buckets() []Bucket {
	return []Bucket{BucketOpen, BucketPendingReview, BucketCompleted}
}

// BucketOf maps a fine-grained status to its counter bucket. It is the single
// mapping shared by the transition validator and the stats engine so the two
// cannot drift. ok is false for unknown statuses.
func BucketOf(s Status) (Bucket, bool) {
	switch s {
	case StatusNew, StatusConfirmed:
		return BucketOpen, true
	case StatusDone:
		return BucketPendingReview, true
	case StatusCompleted:
		return BucketCompleted, true
	}
	return "", false
}

// CounterKey identifies one aggregate counter within a scope.
type CounterKey struct {
	Kind   Kind   `json:"kind"`
	Bucket Bucket `json:"bucket"`
}

// ScopeKind categorizes a counter scope.
type ScopeKind string

// Scope kind constants
const (
	ScopeChannel   ScopeKind = "channel"   // one channel's items
	ScopeTechnical ScopeKind = "technical" // all technical channels combined
	ScopeUser      ScopeKind = "user"      // items created by one user
)

// Scope identifies a counter scope. ID is empty for the technical domain
// scope, a channel ID for channel scopes and a user ID for user scopes.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// Key returns a stable map key for the scope.
func (s Scope) Key() string {
	return string(s.Kind) + "/" + s.ID
}

// ChannelScope returns the scope covering a single channel.
func ChannelScope(channelID string) Scope {
	return Scope{Kind: ScopeChannel, ID: channelID}
}

// TechnicalScope returns the scope covering all technical channels.
func TechnicalScope() Scope {
	return Scope{Kind: ScopeTechnical}
}

// UserScope returns the scope covering one creator's items.
func UserScope(userID string) Scope {
	return Scope{Kind: ScopeUser, ID: userID}
}

// ChecklistState represents the state of a single checklist item
type ChecklistState string

// Checklist item state constants
const (
	ItemOpen          ChecklistState = "open"
	ItemClosed        ChecklistState = "closed"
	ItemSkipRequested ChecklistState = "skip_requested"
	ItemSkipped       ChecklistState = "skipped"
)

// IsValid checks if the checklist state value is valid
func (s ChecklistState) IsValid() bool {
	switch s {
	case ItemOpen, ItemClosed, ItemSkipRequested, ItemSkipped:
		return true
	}
	return false
}

// Terminal returns true for states that accept no further edits.
func (s ChecklistState) Terminal() bool {
	return s == ItemClosed || s == ItemSkipped
}

// CountsAsDone returns true when the item contributes to completion progress.
func (s ChecklistState) CountsAsDone() bool {
	return s == ItemClosed || s == ItemSkipped
}

// ChecklistItem is one sub-item of a task or plan checklist.
type ChecklistItem struct {
	Title     string         `json:"title"`
	State     ChecklistState `json:"state"`
	UpdatedBy string         `json:"updated_by,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// ChecklistGroup is an ordered run of checklist items under one heading.
// Only tasks group their checklist; plans keep a flat item list.
type ChecklistGroup struct {
	Title string          `json:"title,omitempty"`
	Items []ChecklistItem `json:"items"`
}

// Mark records who performed a lifecycle transition and when. A restore
// leaves the prior done mark in place as history.
type Mark struct {
	By string    `json:"by"`
	At time.Time `json:"at"`
}

// WorkItem represents one trouble/issue/plan/task record.
type WorkItem struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	ChannelID string `json:"channel_id"`
	Title     string `json:"title"`
	Status    Status `json:"status"`
	CreatorID string `json:"creator_id"`

	// Assignment (task/plan only); mutable by creator or manager pre-completion.
	AssigneeIDs []string `json:"assignee_ids,omitempty"`
	ManagerIDs  []string `json:"manager_ids,omitempty"`

	Priority bool `json:"priority,omitempty"`

	// Checklists holds grouped sub-items (task). ChecklistItems holds the
	// flat list (plan). LinkedItemIDs references trouble/issue items whose
	// completion gates a plan's completed transition.
	Checklists     []ChecklistGroup `json:"checklists,omitempty"`
	ChecklistItems []ChecklistItem  `json:"checklist_items,omitempty"`
	LinkedItemIDs  []string         `json:"linked_item_ids,omitempty"`

	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Transition metadata, set when the corresponding transition first
	// occurs. PriorityMark tracks the most recent priority toggle.
	Confirmed    *Mark `json:"confirmed,omitempty"`
	Done         *Mark `json:"done,omitempty"`
	Completed    *Mark `json:"completed,omitempty"`
	Restored     *Mark `json:"restored,omitempty"`
	PriorityMark *Mark `json:"priority_mark,omitempty"`
}

// Validate checks if the item has valid field values
func (w *WorkItem) Validate() error {
	if len(w.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(w.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(w.Title))
	}
	if !w.Kind.IsValid() {
		return fmt.Errorf("invalid kind: %s", w.Kind)
	}
	if !w.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", w.Status)
	}
	if w.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if w.CreatorID == "" {
		return fmt.Errorf("creator_id is required")
	}
	if !w.Kind.HasChecklist() {
		if len(w.Checklists) > 0 || len(w.ChecklistItems) > 0 {
			return fmt.Errorf("%s items cannot carry a checklist", w.Kind)
		}
	}
	if w.Kind == KindTask && len(w.ChecklistItems) > 0 {
		return fmt.Errorf("task checklists must be grouped")
	}
	if w.Kind == KindPlan && len(w.Checklists) > 0 {
		return fmt.Errorf("plan checklists must be flat")
	}
	if w.Kind != KindPlan && len(w.LinkedItemIDs) > 0 {
		return fmt.Errorf("only plans may link items")
	}
	if !w.Kind.HasChecklist() && (len(w.AssigneeIDs) > 0 || len(w.ManagerIDs) > 0) {
		return fmt.Errorf("%s items cannot have assignees or managers", w.Kind)
	}
	for gi, g := range w.Checklists {
		for ii, it := range g.Items {
			if !it.State.IsValid() {
				return fmt.Errorf("checklist %d item %d: invalid state %q", gi, ii, it.State)
			}
		}
	}
	for ii, it := range w.ChecklistItems {
		if !it.State.IsValid() {
			return fmt.Errorf("checklist item %d: invalid state %q", ii, it.State)
		}
	}
	// Enforce mark invariants: a status past a transition implies its mark.
	if w.Status == StatusDone && w.Done == nil {
		return fmt.Errorf("done items must carry a done mark")
	}
	if w.Status == StatusCompleted && w.Completed == nil {
		return fmt.Errorf("completed items must carry a completed mark")
	}
	return nil
}

// FlatChecklist returns every checklist item in order: tasks flatten across
// groups, plans return their flat list, trouble/issue return nil.
func (w *WorkItem) FlatChecklist() []ChecklistItem {
	if w.Kind == KindPlan {
		return w.ChecklistItems
	}
	var items []ChecklistItem
	for _, g := range w.Checklists {
		items = append(items, g.Items...)
	}
	return items
}

// IsCreator returns true if userID created the item.
func (w *WorkItem) IsCreator(userID string) bool {
	return userID != "" && w.CreatorID == userID
}

// IsManager returns true if userID is in the manager set.
func (w *WorkItem) IsManager(userID string) bool {
	return containsID(w.ManagerIDs, userID)
}

// IsAssignee returns true if userID is in the assignee set.
func (w *WorkItem) IsAssignee(userID string) bool {
	return containsID(w.AssigneeIDs, userID)
}

// Clone returns a deep copy of the item.
func (w *WorkItem) Clone() *WorkItem {
	cp := *w
	cp.AssigneeIDs = append([]string(nil), w.AssigneeIDs...)
	cp.ManagerIDs = append([]string(nil), w.ManagerIDs...)
	cp.LinkedItemIDs = append([]string(nil), w.LinkedItemIDs...)
	cp.ChecklistItems = cloneItems(w.ChecklistItems)
	if w.Checklists != nil {
		cp.Checklists = make([]ChecklistGroup, len(w.Checklists))
		for i, g := range w.Checklists {
			cp.Checklists[i] = ChecklistGroup{Title: g.Title, Items: cloneItems(g.Items)}
		}
	}
	cp.DueAt = cloneTime(w.DueAt)
	cp.Confirmed = cloneMark(w.Confirmed)
	cp.Done = cloneMark(w.Done)
	cp.Completed = cloneMark(w.Completed)
	cp.Restored = cloneMark(w.Restored)
	cp.PriorityMark = cloneMark(w.PriorityMark)
	return &cp
}

func cloneItems(items []ChecklistItem) []ChecklistItem {
	if items == nil {
		return nil
	}
	out := make([]ChecklistItem, len(items))
	for i, it := range items {
		out[i] = it
		out[i].UpdatedAt = cloneTime(it.UpdatedAt)
	}
	return out
}

func cloneMark(m *Mark) *Mark {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ItemFilter is used to filter item listings
type ItemFilter struct {
	ChannelID string
	CreatorID string
	Kind      *Kind
	Statuses  []Status
	Page      int
	PerPage   int
}
