package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
)

// DefaultDashboardTemplate is the embedded board template.
const DefaultDashboardTemplate = "dashboard.html"

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// BoardService is the slice of Service the controller depends on.
type BoardService interface {
	Mount(ctx context.Context, viewer ViewerContext) (*Session, error)
	Board(ctx context.Context, viewer ViewerContext) (Board, error)
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Service  BoardService
	Renderer Renderer
	Template string
	Title    string
	BasePath string
}

// Controller renders the dashboard page and its JSON payload.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultDashboardTemplate
	}
	if opts.Title == "" {
		opts.Title = "Dashboard"
	}
	return &Controller{opts: opts}
}

// RenderTemplate mounts a fresh session for the viewer and writes the rendered page.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Service == nil {
		return errors.New("dashboard: controller service not configured")
	}
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller renderer not configured")
	}
	if _, err := c.opts.Service.Mount(ctx, viewer); err != nil {
		return err
	}
	board, err := c.opts.Service.Board(ctx, viewer)
	if err != nil {
		return err
	}
	data, err := templateData(map[string]any{
		"title":     c.opts.Title,
		"base_path": c.opts.BasePath,
		"viewer":    viewer,
		"board":     board,
	})
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, data, out)
	return err
}

// templateData flattens the payload into plain maps keyed by JSON field names so
// templates address the same keys as API clients.
func templateData(payload map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var out map[string]any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// LayoutPayload returns the board without remounting.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (Board, error) {
	if c.opts.Service == nil {
		return Board{}, errors.New("dashboard: controller service not configured")
	}
	return c.opts.Service.Board(ctx, viewer)
}
