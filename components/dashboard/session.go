package dashboard

import (
	"context"
	"sync"
	"time"
)

// MetricsUnavailableMessage is shown on metrics-dependent tiles after a failed fetch.
const MetricsUnavailableMessage = "Metrics unavailable"

// MetricsState reports the progress of the single metrics fetch of a session.
type MetricsState struct {
	Loading   bool             `json:"loading"`
	Snapshot  *MetricsSnapshot `json:"snapshot,omitempty"`
	Error     string           `json:"error,omitempty"`
	Dismissed bool             `json:"dismissed,omitempty"`
}

// Failed reports whether the fetch completed with an error.
func (m MetricsState) Failed() bool {
	return !m.Loading && m.Snapshot == nil && m.Error != ""
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Grid      GridOptions
	Metrics   MetricsSource
	Telemetry Telemetry
	Logger    Logger
}

// Session is a single dashboard mount: the grid, its drag machine, and the metrics
// snapshot fetched once for it.
type Session struct {
	grid      *Grid
	drag      *DragMachine
	source    MetricsSource
	telemetry Telemetry
	logger    Logger

	mountOnce sync.Once
	ready     chan struct{}

	mu        sync.RWMutex
	metrics   MetricsState
	startedAt time.Time
}

// NewSession builds a session. The grid is not read until Mount.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Grid.Telemetry == nil {
		opts.Grid.Telemetry = opts.Telemetry
	}
	if opts.Grid.Logger == nil {
		opts.Grid.Logger = opts.Logger
	}
	grid, err := NewGrid(opts.Grid)
	if err != nil {
		return nil, err
	}
	telemetry := normalizeTelemetry(opts.Telemetry)
	s := &Session{
		grid:      grid,
		drag:      NewDragMachine(grid, telemetry),
		source:    opts.Metrics,
		telemetry: telemetry,
		logger:    normalizeLogger(opts.Logger),
		ready:     make(chan struct{}),
		metrics:   MetricsState{Loading: true},
	}
	grid.AddHook(s.drag)
	return s, nil
}

// Grid exposes the session grid.
func (s *Session) Grid() *Grid {
	return s.grid
}

// Drag exposes the session drag machine.
func (s *Session) Drag() *DragMachine {
	return s.drag
}

// Mount loads the persisted layout and starts the metrics fetch. Only the first call
// has any effect. The fetch is detached from ctx cancellation and never retried.
func (s *Session) Mount(ctx context.Context) {
	s.mountOnce.Do(func() {
		s.grid.Load(ctx)
		s.mu.Lock()
		s.startedAt = time.Now()
		s.mu.Unlock()
		go s.fetch(context.WithoutCancel(ctx))
	})
}

func (s *Session) fetch(ctx context.Context) {
	defer close(s.ready)
	var (
		snapshot MetricsSnapshot
		err      error
	)
	if s.source == nil {
		err = errMissingMetricsSource
	} else {
		snapshot, err = s.source.FetchMetrics(ctx)
	}

	s.mu.Lock()
	elapsed := time.Since(s.startedAt)
	if err != nil {
		s.metrics = MetricsState{Error: err.Error()}
	} else {
		s.metrics = MetricsState{Snapshot: &snapshot}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("dashboard: metrics fetch failed", "storage_key", s.grid.StorageKey(), "error", err)
		s.telemetry.Record(ctx, "dashboard.metrics.error", map[string]any{
			"storage_key": s.grid.StorageKey(),
			"error":       err.Error(),
		})
		return
	}
	s.telemetry.Record(ctx, "dashboard.metrics.fetch", map[string]any{
		"storage_key": s.grid.StorageKey(),
		"duration_ms": elapsed.Milliseconds(),
	})
}

// Ready is closed once the metrics fetch has completed, successfully or not.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Metrics returns the current metrics state.
func (s *Session) Metrics() MetricsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.metrics
	if state.Dismissed {
		state.Error = ""
	}
	return state
}

// DismissMetricsError hides the fetch error banner. It reports whether there was an
// error to dismiss.
func (s *Session) DismissMetricsError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics.Error == "" || s.metrics.Dismissed {
		return false
	}
	s.metrics.Dismissed = true
	return true
}

// Board renders the full dashboard view for the viewer.
func (s *Session) Board(ctx context.Context, dispatcher *Dispatcher, catalog Catalog, viewer ViewerContext) Board {
	s.mu.RLock()
	metrics := s.metrics
	s.mu.RUnlock()

	drag := s.drag.State()
	widgets := s.grid.Widgets()
	views := make([]WidgetView, 0, len(widgets))
	for _, w := range widgets {
		view := dispatcher.Render(ctx, w, metrics.Snapshot, viewer)
		if view.Loading && !metrics.Loading {
			view.Loading = false
			view.Error = MetricsUnavailableMessage
		}
		view.Dragged = drag.IsDragged(w.ID)
		view.DropTarget = drag.IsDropTarget(w.Position)
		views = append(views, view)
	}

	board := Board{
		StorageKey:     s.grid.StorageKey(),
		Columns:        GridColumns,
		Widgets:        views,
		Drag:           drag,
		MetricsLoading: metrics.Loading,
		Selectable:     localizeEntries(Selectable(catalog, s.grid.PresentTypes()), viewer.Locale),
	}
	if metrics.Error != "" && !metrics.Dismissed {
		board.MetricsError = metrics.Error
	}
	return board
}

// Board is the render-ready dashboard payload.
type Board struct {
	StorageKey     string         `json:"storage_key"`
	Columns        int            `json:"columns"`
	Widgets        []WidgetView   `json:"widgets"`
	Drag           DragState      `json:"drag"`
	MetricsLoading bool           `json:"metrics_loading"`
	MetricsError   string         `json:"metrics_error,omitempty"`
	Selectable     []CatalogEntry `json:"selectable"`
}

func localizeEntries(entries []CatalogEntry, locale string) []CatalogEntry {
	out := make([]CatalogEntry, len(entries))
	for i, entry := range entries {
		entry.Title = entry.TitleForLocale(locale)
		entry.Description = entry.DescriptionForLocale(locale)
		out[i] = entry
	}
	return out
}
