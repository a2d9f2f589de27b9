package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// DragEventInput forwards a pointer event to the viewer's drag machine.
type DragEventInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
	Actor  Actor                   `json:"actor"`
	Event  dashboard.DragEvent     `json:"event"`
	Result *dashboard.DragState    `json:"-"`
}

type dragService interface {
	ApplyDragEvent(ctx context.Context, viewer dashboard.ViewerContext, event dashboard.DragEvent) (dashboard.DragState, error)
}

// DragEventCommand wraps Service.ApplyDragEvent.
type DragEventCommand struct {
	service dragService
}

// NewDragEventCommand builds a command instance.
func NewDragEventCommand(service dragService) *DragEventCommand {
	return &DragEventCommand{service: service}
}

var _ gocommand.Commander[DragEventInput] = (*DragEventCommand)(nil)

// Execute applies the event. Telemetry is recorded by the drag machine itself.
func (c *DragEventCommand) Execute(ctx context.Context, msg DragEventInput) error {
	if c.service == nil {
		return errors.New("drag command requires service")
	}
	ctx = withActivity(ctx, msg.Viewer, msg.Actor)
	state, err := c.service.ApplyDragEvent(ctx, msg.Viewer, msg.Event)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = state
	}
	return nil
}
