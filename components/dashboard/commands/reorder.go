package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// ReorderWidgetInput moves a widget onto a drop position.
type ReorderWidgetInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	Actor    Actor                   `json:"actor"`
	WidgetID string                  `json:"widget_id"`
	Target   int                     `json:"target"`
}

type reorderService interface {
	ReorderWidget(ctx context.Context, viewer dashboard.ViewerContext, widgetID string, target int) error
}

// ReorderWidgetCommand wraps Service.ReorderWidget.
type ReorderWidgetCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderWidgetCommand builds a command instance.
func NewReorderWidgetCommand(service reorderService, telemetry Telemetry) *ReorderWidgetCommand {
	return &ReorderWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetInput] = (*ReorderWidgetCommand)(nil)

// Execute reorders the grid.
func (c *ReorderWidgetCommand) Execute(ctx context.Context, msg ReorderWidgetInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("reorder command requires widget id")
	}
	ctx = withActivity(ctx, msg.Viewer, msg.Actor)
	if err := c.service.ReorderWidget(ctx, msg.Viewer, msg.WidgetID, msg.Target); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reorder", map[string]any{
		"widget_id": msg.WidgetID,
		"target":    msg.Target,
	})
	return nil
}
