package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/tdvu/chanwork/internal/types"
)

type recordingHandler struct {
	id       string
	handles  []EventType
	priority int
	err      error
	seen     []*Event
}

func (h *recordingHandler) ID() string           { return h.id }
func (h *recordingHandler) Handles() []EventType { return h.handles }
func (h *recordingHandler) Priority() int        { return h.priority }
func (h *recordingHandler) Handle(_ context.Context, e *Event) error {
	h.seen = append(h.seen, e)
	return h.err
}

func statusEvent() *Event {
	return &Event{
		Type:      EventStatusChanged,
		ItemID:    "ta-1",
		ChannelID: "ch1",
		Kind:      types.KindTask,
		OldStatus: types.StatusNew,
		NewStatus: types.StatusDone,
		ActorID:   "u1",
		CreatorID: "u1",
	}
}

func TestDispatchRoutesByType(t *testing.T) {
	bus := New()
	statusH := &recordingHandler{id: "status", handles: []EventType{EventStatusChanged}}
	createH := &recordingHandler{id: "create", handles: []EventType{EventItemCreated}}
	bus.Register(statusH)
	bus.Register(createH)

	if err := bus.Dispatch(context.Background(), statusEvent()); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(statusH.seen) != 1 {
		t.Errorf("status handler saw %d events, want 1", len(statusH.seen))
	}
	if len(createH.seen) != 0 {
		t.Errorf("create handler saw %d events, want 0", len(createH.seen))
	}
}

func TestDispatchPriorityOrder(t *testing.T) {
	bus := New()
	var order []string
	mk := func(id string, prio int) Handler {
		return &funcHandler{id: id, priority: prio, fn: func() { order = append(order, id) }}
	}
	bus.Register(mk("late", 20))
	bus.Register(mk("early", 1))
	bus.Register(mk("mid", 10))

	if err := bus.Dispatch(context.Background(), statusEvent()); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []string{"early", "mid", "late"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("dispatch order = %v, want %v", order, want)
		}
	}
}

func TestDispatchHandlerErrorDoesNotStopChain(t *testing.T) {
	bus := New()
	failing := &recordingHandler{id: "failing", handles: []EventType{EventStatusChanged}, priority: 1, err: errors.New("boom")}
	after := &recordingHandler{id: "after", handles: []EventType{EventStatusChanged}, priority: 2}
	bus.Register(failing)
	bus.Register(after)

	if err := bus.Dispatch(context.Background(), statusEvent()); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(after.seen) != 1 {
		t.Errorf("handler after failure saw %d events, want 1", len(after.seen))
	}
}

func TestDispatchNilEvent(t *testing.T) {
	if err := New().Dispatch(context.Background(), nil); err == nil {
		t.Error("Dispatch(nil) should error")
	}
}

func TestDispatchCancelledContext(t *testing.T) {
	bus := New()
	h := &recordingHandler{id: "h", handles: []EventType{EventStatusChanged}}
	bus.Register(h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.Dispatch(ctx, statusEvent()); err == nil {
		t.Error("Dispatch with cancelled context should error")
	}
	if len(h.seen) != 0 {
		t.Errorf("handler saw %d events after cancellation, want 0", len(h.seen))
	}
}

type funcHandler struct {
	id       string
	priority int
	fn       func()
}

func (h *funcHandler) ID() string           { return h.id }
func (h *funcHandler) Handles() []EventType { return []EventType{EventStatusChanged} }
func (h *funcHandler) Priority() int        { return h.priority }
func (h *funcHandler) Handle(context.Context, *Event) error {
	h.fn()
	return nil
}
