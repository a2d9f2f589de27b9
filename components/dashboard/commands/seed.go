package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// DefaultSeedTypes is the starter layout offered to researchers with an empty grid.
var DefaultSeedTypes = []dashboard.WidgetType{
	dashboard.TypeTotalDreams,
	dashboard.TypeTotalClients,
	dashboard.TypeTotalSessions,
	dashboard.TypeSymbolDistribution,
	dashboard.TypeSymbolChart,
}

// SeedLayoutInput controls seeding. Types defaults to DefaultSeedTypes.
type SeedLayoutInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
	Types  []dashboard.WidgetType  `json:"types,omitempty"`
}

type seedService interface {
	addService
	Board(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Board, error)
}

// SeedLayoutCommand places a starter layout on a grid that has no widgets yet.
type SeedLayoutCommand struct {
	service   seedService
	telemetry Telemetry
}

// NewSeedLayoutCommand wires dependencies.
func NewSeedLayoutCommand(service seedService, telemetry Telemetry) *SeedLayoutCommand {
	return &SeedLayoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedLayoutInput] = (*SeedLayoutCommand)(nil)

// Execute seeds the layout. Grids that already hold widgets are left untouched.
func (c *SeedLayoutCommand) Execute(ctx context.Context, msg SeedLayoutInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	board, err := c.service.Board(ctx, msg.Viewer)
	if err != nil {
		return err
	}
	if len(board.Widgets) > 0 {
		return nil
	}
	types := msg.Types
	if len(types) == 0 {
		types = DefaultSeedTypes
	}
	for _, t := range types {
		if _, err := c.service.AddWidget(ctx, dashboard.AddWidgetRequest{Viewer: msg.Viewer, Type: t}); err != nil {
			return fmt.Errorf("seed %s: %w", t, err)
		}
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{"count": len(types)})
	return nil
}
