package dashboard

import "errors"

var (
	// ErrUnknownWidgetType is returned when a widget type is not part of the catalog.
	ErrUnknownWidgetType = errors.New("dashboard: unknown widget type")
	// ErrInvalidSize is returned for sizes outside small/medium/large.
	ErrInvalidSize = errors.New("dashboard: invalid widget size")
	// ErrWidgetNotFound is returned when an operation targets a widget that is not on the grid.
	ErrWidgetNotFound = errors.New("dashboard: widget not found")
	// ErrInvalidConfig wraps widget configuration schema violations.
	ErrInvalidConfig = errors.New("dashboard: invalid widget configuration")
	// ErrInvalidDragEvent is returned for unrecognized drag inputs.
	ErrInvalidDragEvent = errors.New("dashboard: invalid drag event")
	// ErrLayoutNotFound is returned by layout stores when nothing is persisted under a key.
	ErrLayoutNotFound = errors.New("dashboard: layout not found")

	errMissingStore         = errors.New("dashboard: layout store not configured")
	errMissingCatalog       = errors.New("dashboard: catalog not configured")
	errMissingMetricsSource = errors.New("dashboard: metrics source not configured")
)
