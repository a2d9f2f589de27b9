package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// DragPhase names the states of a drag interaction.
type DragPhase string

const (
	DragIdle         DragPhase = "idle"
	DragDragging     DragPhase = "dragging"
	DragDraggingOver DragPhase = "dragging-over"
)

// DragState is an immutable snapshot of the drag machine.
type DragState struct {
	Phase         DragPhase `json:"phase"`
	DraggedID     string    `json:"dragged_id,omitempty"`
	HoverPosition int       `json:"hover_position"`
}

// IsDragged reports whether id is the widget being dragged (rendered at reduced opacity).
func (s DragState) IsDragged(id string) bool {
	return s.Phase != DragIdle && s.DraggedID == id
}

// IsDropTarget reports whether pos is the hovered drop zone (rendered highlighted).
func (s DragState) IsDropTarget(pos int) bool {
	return s.Phase == DragDraggingOver && s.HoverPosition == pos
}

// DragEventKind enumerates the inputs of the drag machine.
type DragEventKind string

const (
	DragEventStart DragEventKind = "start"
	DragEventOver  DragEventKind = "over"
	DragEventDrop  DragEventKind = "drop"
	DragEventEnd   DragEventKind = "end"
)

// DragEvent is a transport-friendly drag input.
type DragEvent struct {
	Kind     DragEventKind `json:"kind"`
	WidgetID string        `json:"widget_id,omitempty"`
	Position int           `json:"position"`
}

type reorderer interface {
	Widget(id string) (WidgetInstance, bool)
	Reorder(ctx context.Context, draggedID string, target int) bool
}

// DragMachine tracks idle → dragging → dragging-over transitions and commits a reorder
// only on drop.
type DragMachine struct {
	mu        sync.Mutex
	grid      reorderer
	state     DragState
	telemetry Telemetry
}

// NewDragMachine binds a machine to the grid it reorders.
func NewDragMachine(grid reorderer, telemetry Telemetry) *DragMachine {
	return &DragMachine{
		grid:      grid,
		state:     idleState(),
		telemetry: normalizeTelemetry(telemetry),
	}
}

func idleState() DragState {
	return DragState{Phase: DragIdle, HoverPosition: -1}
}

// State returns the current snapshot.
func (m *DragMachine) State() DragState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start begins dragging id. Ids not on the grid are ignored.
func (m *DragMachine) Start(ctx context.Context, id string) DragState {
	if _, ok := m.grid.Widget(id); !ok {
		return m.State()
	}
	m.mu.Lock()
	m.state = DragState{Phase: DragDragging, DraggedID: id, HoverPosition: -1}
	state := m.state
	m.mu.Unlock()
	m.telemetry.Record(ctx, "dashboard.drag.start", map[string]any{"widget_id": id})
	return state
}

// Over records the drop zone under the pointer. Repeating the same position is a no-op.
func (m *DragMachine) Over(pos int) DragState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase == DragIdle || pos < 0 {
		return m.state
	}
	if m.state.Phase == DragDraggingOver && m.state.HoverPosition == pos {
		return m.state
	}
	m.state.Phase = DragDraggingOver
	m.state.HoverPosition = pos
	return m.state
}

// Drop commits the reorder onto the hovered position and returns to idle. It reports
// whether a reorder was committed.
func (m *DragMachine) Drop(ctx context.Context) bool {
	m.mu.Lock()
	state := m.state
	m.state = idleState()
	m.mu.Unlock()
	if state.Phase != DragDraggingOver {
		return false
	}
	committed := m.grid.Reorder(ctx, state.DraggedID, state.HoverPosition)
	m.telemetry.Record(ctx, "dashboard.drag.drop", map[string]any{
		"widget_id": state.DraggedID,
		"position":  state.HoverPosition,
		"committed": committed,
	})
	return committed
}

// End cancels any drag without committing.
func (m *DragMachine) End(ctx context.Context) {
	m.mu.Lock()
	wasActive := m.state.Phase != DragIdle
	m.state = idleState()
	m.mu.Unlock()
	if wasActive {
		m.telemetry.Record(ctx, "dashboard.drag.cancel", nil)
	}
}

// Apply dispatches a transport event to the matching transition.
func (m *DragMachine) Apply(ctx context.Context, event DragEvent) (DragState, error) {
	switch event.Kind {
	case DragEventStart:
		return m.Start(ctx, event.WidgetID), nil
	case DragEventOver:
		return m.Over(event.Position), nil
	case DragEventDrop:
		m.Drop(ctx)
		return m.State(), nil
	case DragEventEnd:
		m.End(ctx)
		return m.State(), nil
	default:
		return m.State(), fmt.Errorf("%w: %q", ErrInvalidDragEvent, event.Kind)
	}
}

// WidgetUpdated cancels the drag when the dragged widget is removed.
func (m *DragMachine) WidgetUpdated(ctx context.Context, event LayoutEvent) error {
	if event.Reason != ReasonRemove {
		return nil
	}
	m.mu.Lock()
	cancel := m.state.Phase != DragIdle && m.state.DraggedID == event.Instance.ID
	if cancel {
		m.state = idleState()
	}
	m.mu.Unlock()
	if cancel {
		m.telemetry.Record(ctx, "dashboard.drag.cancel", map[string]any{"widget_id": event.Instance.ID, "reason": "removed"})
	}
	return nil
}
