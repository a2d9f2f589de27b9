package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap storage, catalog, and metrics backends.
type Options struct {
	Store           LayoutStore
	Catalog         Catalog
	Metrics         MetricsSource
	StorageKey      string
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Dispatcher      *Dispatcher
	Telemetry       Telemetry
	Logger          Logger
	IDGenerator     IDGenerator
}

// Service keeps one dashboard session per viewer and exposes the grid operations
// transports call into.
type Service struct {
	opts     Options
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewInMemoryLayoutStore()
	}
	if opts.Catalog == nil {
		opts.Catalog = NewRegistry()
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewDispatcher(opts.Catalog)
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	return &Service{opts: opts, sessions: make(map[string]*Session)}
}

// Catalog exposes the widget catalog backing the service.
func (s *Service) Catalog() Catalog {
	return s.opts.Catalog
}

// Mount starts a fresh session for the viewer, replacing any previous one. The layout
// is re-read from storage and metrics are fetched again.
func (s *Service) Mount(ctx context.Context, viewer ViewerContext) (*Session, error) {
	session, err := s.newSession(viewer)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[session.Grid().StorageKey()] = session
	s.mu.Unlock()
	session.Mount(ctx)
	return session, nil
}

// Session returns the viewer's current session, mounting one when none exists.
// Concurrent first requests for the same viewer share a single session.
func (s *Service) Session(ctx context.Context, viewer ViewerContext) (*Session, error) {
	key := ScopedKey(s.opts.StorageKey, viewer)
	s.mu.Lock()
	session, ok := s.sessions[key]
	if !ok {
		var err error
		if session, err = s.newSession(viewer); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.sessions[key] = session
	}
	s.mu.Unlock()
	// Mount runs once per session; later callers wait for the first load.
	session.Mount(ctx)
	return session, nil
}

func (s *Service) newSession(viewer ViewerContext) (*Session, error) {
	return NewSession(SessionOptions{
		Grid: GridOptions{
			Store:           s.opts.Store,
			Catalog:         s.opts.Catalog,
			StorageKey:      ScopedKey(s.opts.StorageKey, viewer),
			Viewer:          viewer,
			ConfigValidator: s.opts.ConfigValidator,
			RefreshHook:     s.opts.RefreshHook,
			IDGenerator:     s.opts.IDGenerator,
		},
		Metrics:   s.opts.Metrics,
		Telemetry: s.opts.Telemetry,
		Logger:    s.opts.Logger,
	})
}

// AddWidgetRequest captures the data required to place a new widget.
type AddWidgetRequest struct {
	Viewer ViewerContext  `json:"viewer"`
	Type   WidgetType     `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// AddWidget appends a widget of the requested type to the viewer's grid.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) (WidgetInstance, error) {
	if req.Type == "" {
		return WidgetInstance{}, fmt.Errorf("%w: type is required", ErrUnknownWidgetType)
	}
	session, err := s.Session(ctx, req.Viewer)
	if err != nil {
		return WidgetInstance{}, err
	}
	return session.Grid().Add(ctx, req.Type, req.Config)
}

// RemoveWidget deletes a widget. Removing an unknown id succeeds.
func (s *Service) RemoveWidget(ctx context.Context, viewer ViewerContext, widgetID string) error {
	if widgetID == "" {
		return errors.New("dashboard: widget id is required")
	}
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return err
	}
	session.Grid().Remove(ctx, widgetID)
	return nil
}

// ResizeWidget sets an explicit size.
func (s *Service) ResizeWidget(ctx context.Context, viewer ViewerContext, widgetID string, size WidgetSize) error {
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return err
	}
	ok, err := session.Grid().Resize(ctx, widgetID, size)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	return nil
}

// CycleWidgetSize advances a widget to its next legal size and returns it.
func (s *Service) CycleWidgetSize(ctx context.Context, viewer ViewerContext, widgetID string) (WidgetSize, error) {
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return "", err
	}
	size, ok := session.Grid().CycleSize(ctx, widgetID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	return size, nil
}

// ReorderWidget moves a widget to the target drop position.
func (s *Service) ReorderWidget(ctx context.Context, viewer ViewerContext, widgetID string, target int) error {
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return err
	}
	if !session.Grid().Reorder(ctx, widgetID, target) {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	return nil
}

// ApplyDragEvent feeds a drag input into the viewer's drag machine.
func (s *Service) ApplyDragEvent(ctx context.Context, viewer ViewerContext, event DragEvent) (DragState, error) {
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return DragState{}, err
	}
	return session.Drag().Apply(ctx, event)
}

// DismissMetricsError hides the viewer's metrics error banner.
func (s *Service) DismissMetricsError(ctx context.Context, viewer ViewerContext) (bool, error) {
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return false, err
	}
	return session.DismissMetricsError(), nil
}

// Board renders the viewer's dashboard.
func (s *Service) Board(ctx context.Context, viewer ViewerContext) (Board, error) {
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return Board{}, err
	}
	board := session.Board(ctx, s.opts.Dispatcher, s.opts.Catalog, viewer)
	s.opts.Telemetry.Record(ctx, "dashboard.board.render", map[string]any{
		"storage_key": board.StorageKey,
		"widgets":     len(board.Widgets),
	})
	return board, nil
}

// SelectableTypes lists the catalog entries the viewer may add.
func (s *Service) SelectableTypes(ctx context.Context, viewer ViewerContext) ([]CatalogEntry, error) {
	session, err := s.Session(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return localizeEntries(Selectable(s.opts.Catalog, session.Grid().PresentTypes()), viewer.Locale), nil
}
