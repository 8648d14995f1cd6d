package eventbus

import (
	"time"

	"github.com/tdvu/chanwork/internal/types"
)

// EventType identifies an event flowing through the bus.
type EventType string

const (
	// Work-item lifecycle events.
	EventItemCreated       EventType = "item.created"
	EventStatusChanged     EventType = "item.status_changed"
	EventChecklistUpdated  EventType = "item.checklist_updated"
	EventPriorityChanged   EventType = "item.priority_changed"
	EventAssignmentChanged EventType = "item.assignment_changed"
)

// IsLifecycleEvent returns true for events that move an item between
// counter buckets (creation and status changes).
func (t EventType) IsLifecycleEvent() bool {
	return t == EventItemCreated || t == EventStatusChanged
}

// Event represents a single work-item event flowing through the bus.
// OldStatus/NewStatus are populated for status changes only. Technical is
// true when the owning channel belongs to the technical domain, so that
// domain-wide counter scopes can be derived without a channel lookup.
type Event struct {
	Type      EventType    `json:"type"`
	ItemID    string       `json:"item_id"`
	ChannelID string       `json:"channel_id"`
	Kind      types.Kind   `json:"kind"`
	OldStatus types.Status `json:"old_status,omitempty"`
	NewStatus types.Status `json:"new_status,omitempty"`
	ActorID   string       `json:"actor_id"`
	CreatorID string       `json:"creator_id"`
	Technical bool         `json:"technical,omitempty"`
	At        time.Time    `json:"at"`
}
