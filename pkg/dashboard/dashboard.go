package dashboard

import (
	core "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext identifies who the grid is rendered for.
type ViewerContext = core.ViewerContext

// MetricsSource re-export for applications supplying their own statistics backend.
type MetricsSource = core.MetricsSource

// LayoutStore re-export for custom persistence backends.
type LayoutStore = core.LayoutStore

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
