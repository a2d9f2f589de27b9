package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// ResizeWidgetInput sets a widget size. An empty Size cycles to the next legal size.
type ResizeWidgetInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	Actor    Actor                   `json:"actor"`
	WidgetID string                  `json:"widget_id"`
	Size     dashboard.WidgetSize    `json:"size,omitempty"`
	Result   *dashboard.WidgetSize   `json:"-"`
}

type resizeService interface {
	ResizeWidget(ctx context.Context, viewer dashboard.ViewerContext, widgetID string, size dashboard.WidgetSize) error
	CycleWidgetSize(ctx context.Context, viewer dashboard.ViewerContext, widgetID string) (dashboard.WidgetSize, error)
}

// ResizeWidgetCommand wraps Service.ResizeWidget and Service.CycleWidgetSize.
type ResizeWidgetCommand struct {
	service   resizeService
	telemetry Telemetry
}

// NewResizeWidgetCommand builds a command instance.
func NewResizeWidgetCommand(service resizeService, telemetry Telemetry) *ResizeWidgetCommand {
	return &ResizeWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeWidgetInput] = (*ResizeWidgetCommand)(nil)

// Execute resizes or cycles the widget.
func (c *ResizeWidgetCommand) Execute(ctx context.Context, msg ResizeWidgetInput) error {
	if c.service == nil {
		return errors.New("resize command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("resize command requires widget id")
	}
	ctx = withActivity(ctx, msg.Viewer, msg.Actor)
	size := msg.Size
	if size == "" {
		next, err := c.service.CycleWidgetSize(ctx, msg.Viewer, msg.WidgetID)
		if err != nil {
			return err
		}
		size = next
	} else if err := c.service.ResizeWidget(ctx, msg.Viewer, msg.WidgetID, size); err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = size
	}
	c.telemetry.Record(ctx, "dashboard.command.resize", map[string]any{
		"widget_id": msg.WidgetID,
		"size":      string(size),
		"cycled":    msg.Size == "",
	})
	return nil
}
