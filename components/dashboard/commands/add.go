package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// AddWidgetInput places a new widget on the viewer's grid. Result, when set, receives
// the created instance.
type AddWidgetInput struct {
	Viewer dashboard.ViewerContext   `json:"viewer"`
	Actor  Actor                     `json:"actor"`
	Type   dashboard.WidgetType      `json:"type"`
	Config map[string]any            `json:"config,omitempty"`
	Result *dashboard.WidgetInstance `json:"-"`
}

type addService interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.WidgetInstance, error)
}

// AddWidgetCommand wraps Service.AddWidget so transports can place widgets without
// linking directly against the service.
type AddWidgetCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddWidgetCommand creates a command instance.
func NewAddWidgetCommand(service addService, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AddWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	if c.service == nil {
		return errors.New("add command requires service")
	}
	ctx = withActivity(ctx, msg.Viewer, msg.Actor)
	instance, err := c.service.AddWidget(ctx, dashboard.AddWidgetRequest{
		Viewer: msg.Viewer,
		Type:   msg.Type,
		Config: msg.Config,
	})
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = instance
	}
	c.telemetry.Record(ctx, "dashboard.command.add", map[string]any{
		"widget_id": instance.ID,
		"type":      string(msg.Type),
	})
	return nil
}
