package lifecycle

import (
	"github.com/tdvu/chanwork/internal/types"
)

// allowedEdges is the item status machine. A status absent from the map (or
// mapped to an empty set) is terminal.
var allowedEdges = map[types.Status][]types.Status{
	types.StatusNew:       {types.StatusConfirmed, types.StatusDone},
	types.StatusConfirmed: {types.StatusDone},
	types.StatusDone:      {types.StatusConfirmed, types.StatusCompleted},
	types.StatusCompleted: {},
}

func edgeAllowed(from, to types.Status) bool {
	for _, s := range allowedEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateStatusChange checks one status transition against the state
// machine, role requirements and completion gates. ratio is the item's
// checklist progress (tasks and plans); linked holds the current statuses of
// the plan's linked items.
func ValidateStatusChange(item *types.WorkItem, to types.Status, actorID string, isMember bool, ratio float64, linked map[string]types.Status) error {
	if !edgeAllowed(item.Status, to) {
		return &InvalidTransitionError{From: string(item.Status), To: string(to), Reason: ReasonIllegalEdge}
	}

	// Trouble and issue items accept transitions from non-members so that
	// reports stay actionable after the reporter leaves the channel.
	if item.Kind.RequiresMembership() && !isMember {
		return &UnauthorizedError{ActorID: actorID, RequiredRole: RoleMember}
	}

	// Restoring a reviewed item reopens work, so only its owners may do it.
	if item.Status == types.StatusDone && to == types.StatusConfirmed &&
		item.Kind.RequiresMembership() &&
		!item.IsCreator(actorID) && !item.IsManager(actorID) {
		return &UnauthorizedError{ActorID: actorID, RequiredRole: RoleCreatorOrManager}
	}

	if to == types.StatusDone && item.Kind.HasChecklist() && ratio < 1 {
		return &InvalidTransitionError{From: string(item.Status), To: string(to), Reason: ReasonChecklistOpen}
	}

	if to == types.StatusCompleted && item.Kind == types.KindPlan {
		for _, id := range item.LinkedItemIDs {
			if linked[id] != types.StatusCompleted {
				return &InvalidTransitionError{From: string(item.Status), To: string(to), Reason: ReasonLinkedIncomplete}
			}
		}
	}
	return nil
}

// ValidateChecklistEdit checks one checklist item state change. Closing and
// requesting a skip are open to any member; resolving a skip request is the
// creator's call. Settled items and completed parents accept no edits.
func ValidateChecklistEdit(item *types.WorkItem, from, to types.ChecklistState, actorID string, isMember bool) error {
	if item.Status == types.StatusCompleted {
		return &InvalidTransitionError{From: string(from), To: string(to), Reason: ReasonItemFrozen}
	}
	if from.Terminal() {
		return &InvalidTransitionError{From: string(from), To: string(to), Reason: ReasonStateFrozen}
	}
	if !isMember {
		return &UnauthorizedError{ActorID: actorID, RequiredRole: RoleMember}
	}

	switch {
	case from == types.ItemOpen && (to == types.ItemClosed || to == types.ItemSkipRequested):
		return nil
	case from == types.ItemSkipRequested && (to == types.ItemSkipped || to == types.ItemOpen):
		if !item.IsCreator(actorID) {
			return &UnauthorizedError{ActorID: actorID, RequiredRole: RoleCreator}
		}
		return nil
	}
	return &InvalidTransitionError{From: string(from), To: string(to), Reason: ReasonIllegalEdge}
}
