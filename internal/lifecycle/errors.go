package lifecycle

import "fmt"

// Transition rejection reasons.
const (
	ReasonIllegalEdge      = "illegal edge"
	ReasonChecklistOpen    = "incomplete checklist"
	ReasonLinkedIncomplete = "linked items not completed"
	ReasonItemFrozen       = "item is completed"
	ReasonStateFrozen      = "checklist item is settled"
)

// Actor roles required by guarded operations.
const (
	RoleMember           = "channel member"
	RoleCreator          = "creator"
	RoleCreatorOrManager = "creator or manager"
)

// InvalidTransitionError reports a rejected state change. From and To are
// strings so the same type covers item statuses and checklist item states.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// UnauthorizedError reports an actor lacking the role an operation demands.
type UnauthorizedError struct {
	ActorID      string
	RequiredRole string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user %s is not a %s", e.ActorID, e.RequiredRole)
}
