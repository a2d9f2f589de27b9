package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// DismissMetricsErrorInput hides the viewer's metrics error banner.
type DismissMetricsErrorInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
}

type dismissService interface {
	DismissMetricsError(ctx context.Context, viewer dashboard.ViewerContext) (bool, error)
}

// DismissMetricsErrorCommand wraps Service.DismissMetricsError.
type DismissMetricsErrorCommand struct {
	service   dismissService
	telemetry Telemetry
}

// NewDismissMetricsErrorCommand builds a command instance.
func NewDismissMetricsErrorCommand(service dismissService, telemetry Telemetry) *DismissMetricsErrorCommand {
	return &DismissMetricsErrorCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DismissMetricsErrorInput] = (*DismissMetricsErrorCommand)(nil)

// Execute dismisses the error. Dismissing when there is no error succeeds.
func (c *DismissMetricsErrorCommand) Execute(ctx context.Context, msg DismissMetricsErrorInput) error {
	if c.service == nil {
		return errors.New("dismiss command requires service")
	}
	dismissed, err := c.service.DismissMetricsError(ctx, msg.Viewer)
	if err != nil {
		return err
	}
	if dismissed {
		c.telemetry.Record(ctx, "dashboard.metrics.dismiss", map[string]any{"user_id": msg.Viewer.UserID})
	}
	return nil
}
