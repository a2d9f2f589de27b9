package httpapi

import (
	"context"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-widgetgrid/components/dashboard"
	"github.com/goliatone/go-widgetgrid/components/dashboard/commands"
	"github.com/goliatone/go-widgetgrid/components/dashboard/queries"
)

// Executor is the transport-facing surface over dashboard commands and queries.
type Executor interface {
	Add(ctx context.Context, input commands.AddWidgetInput) (dashboard.WidgetInstance, error)
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Resize(ctx context.Context, input commands.ResizeWidgetInput) (dashboard.WidgetSize, error)
	Reorder(ctx context.Context, input commands.ReorderWidgetInput) error
	Drag(ctx context.Context, input commands.DragEventInput) (dashboard.DragState, error)
	DismissMetricsError(ctx context.Context, input commands.DismissMetricsErrorInput) error
	Board(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Board, error)
	Selectable(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.CatalogEntry, error)
}

// CommandExecutor implements Executor by dispatching to go-command handlers.
type CommandExecutor struct {
	AddCommander      gocommand.Commander[commands.AddWidgetInput]
	RemoveCommander   gocommand.Commander[commands.RemoveWidgetInput]
	ResizeCommander   gocommand.Commander[commands.ResizeWidgetInput]
	ReorderCommander  gocommand.Commander[commands.ReorderWidgetInput]
	DragCommander     gocommand.Commander[commands.DragEventInput]
	DismissCommander  gocommand.Commander[commands.DismissMetricsErrorInput]
	BoardQuerier      gocommand.Querier[dashboard.ViewerContext, dashboard.Board]
	SelectableQuerier gocommand.Querier[dashboard.ViewerContext, []dashboard.CatalogEntry]
}

// NewCommandExecutor wires every command and query to a dashboard service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		AddCommander:      commands.NewAddWidgetCommand(service, telemetry),
		RemoveCommander:   commands.NewRemoveWidgetCommand(service, telemetry),
		ResizeCommander:   commands.NewResizeWidgetCommand(service, telemetry),
		ReorderCommander:  commands.NewReorderWidgetCommand(service, telemetry),
		DragCommander:     commands.NewDragEventCommand(service),
		DismissCommander:  commands.NewDismissMetricsErrorCommand(service, telemetry),
		BoardQuerier:      queries.NewBoardQuery(service),
		SelectableQuerier: queries.NewSelectableTypesQuery(service),
	}
}

var errNotConfigured = errors.New("httpapi: operation not configured")

var _ Executor = (*CommandExecutor)(nil)

// Add executes the add command and returns the created widget.
func (e *CommandExecutor) Add(ctx context.Context, input commands.AddWidgetInput) (dashboard.WidgetInstance, error) {
	if e.AddCommander == nil {
		return dashboard.WidgetInstance{}, errNotConfigured
	}
	var created dashboard.WidgetInstance
	input.Result = &created
	err := e.AddCommander.Execute(ctx, input)
	return created, err
}

// Remove executes the remove command.
func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	if e.RemoveCommander == nil {
		return errNotConfigured
	}
	return e.RemoveCommander.Execute(ctx, input)
}

// Resize executes the resize command and returns the resulting size.
func (e *CommandExecutor) Resize(ctx context.Context, input commands.ResizeWidgetInput) (dashboard.WidgetSize, error) {
	if e.ResizeCommander == nil {
		return "", errNotConfigured
	}
	var size dashboard.WidgetSize
	input.Result = &size
	err := e.ResizeCommander.Execute(ctx, input)
	return size, err
}

// Reorder executes the reorder command.
func (e *CommandExecutor) Reorder(ctx context.Context, input commands.ReorderWidgetInput) error {
	if e.ReorderCommander == nil {
		return errNotConfigured
	}
	return e.ReorderCommander.Execute(ctx, input)
}

// Drag executes the drag command and returns the resulting machine state.
func (e *CommandExecutor) Drag(ctx context.Context, input commands.DragEventInput) (dashboard.DragState, error) {
	if e.DragCommander == nil {
		return dashboard.DragState{}, errNotConfigured
	}
	var state dashboard.DragState
	input.Result = &state
	err := e.DragCommander.Execute(ctx, input)
	return state, err
}

// DismissMetricsError executes the dismiss command.
func (e *CommandExecutor) DismissMetricsError(ctx context.Context, input commands.DismissMetricsErrorInput) error {
	if e.DismissCommander == nil {
		return errNotConfigured
	}
	return e.DismissCommander.Execute(ctx, input)
}

// Board runs the board query.
func (e *CommandExecutor) Board(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Board, error) {
	if e.BoardQuerier == nil {
		return dashboard.Board{}, errNotConfigured
	}
	return e.BoardQuerier.Query(ctx, viewer)
}

// Selectable runs the selectable types query.
func (e *CommandExecutor) Selectable(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.CatalogEntry, error) {
	if e.SelectableQuerier == nil {
		return nil, errNotConfigured
	}
	return e.SelectableQuerier.Query(ctx, viewer)
}

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrWidgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrUnknownWidgetType),
		errors.Is(err, dashboard.ErrInvalidSize),
		errors.Is(err, dashboard.ErrInvalidConfig),
		errors.Is(err, dashboard.ErrInvalidDragEvent):
		return http.StatusBadRequest
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
