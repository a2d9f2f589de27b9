package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces a new widget id for a type.
type IDGenerator func(t WidgetType) string

// GridOptions configures a Grid. Store and Catalog are required.
type GridOptions struct {
	Store           LayoutStore
	Catalog         Catalog
	StorageKey      string
	Viewer          ViewerContext
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Logger          Logger
	IDGenerator     IDGenerator
	Now             func() time.Time
}

// Grid owns the authoritative in-memory widget collection and mirrors every mutation
// to the layout store. Storage failures are logged and never returned; memory stays
// the source of truth for the rest of the session.
type Grid struct {
	opts    GridOptions
	mu      sync.Mutex
	loaded  bool
	widgets []WidgetInstance
	hooks   RefreshHooks
}

// NewGrid builds a Grid with safe defaults.
func NewGrid(opts GridOptions) (*Grid, error) {
	if opts.Store == nil {
		return nil, errMissingStore
	}
	if opts.Catalog == nil {
		return nil, errMissingCatalog
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = newWidgetID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	g := &Grid{opts: opts}
	if opts.RefreshHook != nil {
		g.hooks = append(g.hooks, opts.RefreshHook)
	}
	return g, nil
}

func newWidgetID(t WidgetType) string {
	token, err := uuid.NewV7()
	if err != nil {
		token = uuid.New()
	}
	return fmt.Sprintf("%s-%s", t, token)
}

// AddHook registers another observer for layout events.
func (g *Grid) AddHook(h RefreshHook) {
	if h == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, h)
}

// StorageKey returns the key this grid persists under.
func (g *Grid) StorageKey() string {
	return g.opts.StorageKey
}

// Load reads the persisted collection once. Missing, unparsable, or non-array payloads
// yield an empty grid. Later calls are no-ops.
func (g *Grid) Load(ctx context.Context) []WidgetInstance {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loaded {
		return cloneWidgets(g.widgets)
	}
	g.loaded = true
	g.widgets = g.read(ctx)
	g.opts.Telemetry.Record(ctx, "dashboard.layout.load", map[string]any{
		"storage_key": g.opts.StorageKey,
		"count":       len(g.widgets),
	})
	return cloneWidgets(g.widgets)
}

func (g *Grid) read(ctx context.Context) []WidgetInstance {
	payload, err := g.opts.Store.Load(ctx, g.opts.StorageKey)
	if err != nil {
		if !errors.Is(err, ErrLayoutNotFound) {
			g.opts.Logger.Warn("dashboard: read layout failed", "storage_key", g.opts.StorageKey, "error", err)
		}
		return []WidgetInstance{}
	}
	widgets, err := decodeCollection(payload)
	if err != nil {
		g.opts.Logger.Warn("dashboard: discarding unreadable layout", "storage_key", g.opts.StorageKey, "error", err)
		return []WidgetInstance{}
	}
	return widgets
}

// decodeCollection parses a stored collection, restoring dense positions and dropping
// duplicate ids.
func decodeCollection(payload []byte) ([]WidgetInstance, error) {
	var stored []WidgetInstance
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.New("dashboard: stored layout is not an array")
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Position < stored[j].Position })
	seen := make(map[string]struct{}, len(stored))
	out := make([]WidgetInstance, 0, len(stored))
	for _, w := range stored {
		if w.ID == "" || w.Type == "" {
			return nil, fmt.Errorf("dashboard: stored widget at position %d is missing id or type", w.Position)
		}
		if !w.Size.Valid() {
			return nil, fmt.Errorf("%w: stored widget %s has size %q", ErrInvalidSize, w.ID, w.Size)
		}
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}
		out = append(out, w)
	}
	renumber(out)
	return out, nil
}

// Widgets returns a snapshot of the collection in render order.
func (g *Grid) Widgets() []WidgetInstance {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneWidgets(g.widgets)
}

// Widget returns a single instance by id.
func (g *Grid) Widget(id string) (WidgetInstance, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.indexOf(id); idx >= 0 {
		return cloneWidget(g.widgets[idx]), true
	}
	return WidgetInstance{}, false
}

// PresentTypes lists the distinct widget types on the grid in render order.
func (g *Grid) PresentTypes() []WidgetType {
	g.mu.Lock()
	defer g.mu.Unlock()
	seen := make(map[WidgetType]struct{}, len(g.widgets))
	out := make([]WidgetType, 0, len(g.widgets))
	for _, w := range g.widgets {
		if _, ok := seen[w.Type]; ok {
			continue
		}
		seen[w.Type] = struct{}{}
		out = append(out, w.Type)
	}
	return out
}

// Add appends a widget of the given type using the catalog default size.
func (g *Grid) Add(ctx context.Context, t WidgetType, config map[string]any) (WidgetInstance, error) {
	entry, ok := g.opts.Catalog.Entry(t)
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %q", ErrUnknownWidgetType, t)
	}
	if err := g.opts.ConfigValidator.Validate(entry, config); err != nil {
		return WidgetInstance{}, err
	}
	g.mu.Lock()
	id := g.uniqueID(t)
	instance := WidgetInstance{
		ID:       id,
		Type:     t,
		Position: len(g.widgets),
		Size:     entry.DefaultSize,
		Config:   cloneConfig(config),
	}
	g.widgets = append(g.widgets, instance)
	count := len(g.widgets)
	g.persistLocked(ctx)
	g.mu.Unlock()

	g.emit(ctx, ReasonAdd, instance, count)
	g.opts.Telemetry.Record(ctx, "dashboard.widget.add", map[string]any{
		"storage_key": g.opts.StorageKey,
		"widget_id":   id,
		"type":        string(t),
	})
	return cloneWidget(instance), nil
}

func (g *Grid) uniqueID(t WidgetType) string {
	for {
		id := g.opts.IDGenerator(t)
		if g.indexOf(id) < 0 {
			return id
		}
	}
}

// Remove deletes a widget and renumbers the rest. Unknown ids are a no-op.
func (g *Grid) Remove(ctx context.Context, id string) bool {
	g.mu.Lock()
	idx := g.indexOf(id)
	if idx < 0 {
		g.mu.Unlock()
		return false
	}
	removed := g.widgets[idx]
	g.widgets = append(g.widgets[:idx], g.widgets[idx+1:]...)
	renumber(g.widgets)
	count := len(g.widgets)
	g.persistLocked(ctx)
	g.mu.Unlock()

	g.emit(ctx, ReasonRemove, removed, count)
	g.opts.Telemetry.Record(ctx, "dashboard.widget.remove", map[string]any{
		"storage_key": g.opts.StorageKey,
		"widget_id":   id,
	})
	return true
}

// Resize sets a widget's size in place. Catalog bounds are not enforced here; callers
// cycle through legal sizes with CycleSize.
func (g *Grid) Resize(ctx context.Context, id string, size WidgetSize) (bool, error) {
	if !size.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}
	g.mu.Lock()
	idx := g.indexOf(id)
	if idx < 0 {
		g.mu.Unlock()
		return false, nil
	}
	g.widgets[idx].Size = size
	updated := g.widgets[idx]
	count := len(g.widgets)
	g.persistLocked(ctx)
	g.mu.Unlock()

	g.emit(ctx, ReasonResize, updated, count)
	g.opts.Telemetry.Record(ctx, "dashboard.widget.resize", map[string]any{
		"storage_key": g.opts.StorageKey,
		"widget_id":   id,
		"size":        string(size),
	})
	return true, nil
}

// CycleSize moves a widget to the next size allowed by its catalog bounds.
func (g *Grid) CycleSize(ctx context.Context, id string) (WidgetSize, bool) {
	current, ok := g.Widget(id)
	if !ok {
		return "", false
	}
	next := g.NextSize(current)
	if _, err := g.Resize(ctx, id, next); err != nil {
		return current.Size, false
	}
	return next, true
}

// NextSize reports the size CycleSize would pick for the instance.
func (g *Grid) NextSize(instance WidgetInstance) WidgetSize {
	entry, ok := g.opts.Catalog.Entry(instance.Type)
	if !ok {
		return NextSize(instance.Size, SizeSmall, SizeLarge)
	}
	return NextSize(instance.Size, entry.MinSize, entry.MaxSize)
}

// Reorder moves draggedID so that it lands at target within the sequence that remains
// after removing it, i.e. immediately before whatever currently sits at target.
func (g *Grid) Reorder(ctx context.Context, draggedID string, target int) bool {
	g.mu.Lock()
	idx := g.indexOf(draggedID)
	if idx < 0 {
		g.mu.Unlock()
		return false
	}
	dragged := g.widgets[idx]
	remaining := make([]WidgetInstance, 0, len(g.widgets))
	remaining = append(remaining, g.widgets[:idx]...)
	remaining = append(remaining, g.widgets[idx+1:]...)
	if target < 0 {
		target = 0
	}
	if target > len(remaining) {
		target = len(remaining)
	}
	reordered := make([]WidgetInstance, 0, len(g.widgets))
	reordered = append(reordered, remaining[:target]...)
	reordered = append(reordered, dragged)
	reordered = append(reordered, remaining[target:]...)
	renumber(reordered)
	g.widgets = reordered
	moved := g.widgets[target]
	count := len(g.widgets)
	g.persistLocked(ctx)
	g.mu.Unlock()

	g.emit(ctx, ReasonReorder, moved, count)
	g.opts.Telemetry.Record(ctx, "dashboard.widget.reorder", map[string]any{
		"storage_key": g.opts.StorageKey,
		"widget_id":   draggedID,
		"from":        idx,
		"to":          target,
	})
	return true
}

func (g *Grid) persistLocked(ctx context.Context) {
	payload, err := json.Marshal(nonNilWidgets(g.widgets))
	if err == nil {
		err = g.opts.Store.Save(ctx, g.opts.StorageKey, payload)
	}
	if err != nil {
		g.opts.Logger.Error("dashboard: persist layout failed", "storage_key", g.opts.StorageKey, "error", err)
		g.opts.Telemetry.Record(ctx, "dashboard.layout.persist_error", map[string]any{
			"storage_key": g.opts.StorageKey,
			"error":       err.Error(),
		})
	}
}

func (g *Grid) emit(ctx context.Context, reason string, instance WidgetInstance, count int) {
	g.mu.Lock()
	hooks := append(RefreshHooks(nil), g.hooks...)
	g.mu.Unlock()
	event := LayoutEvent{
		StorageKey: g.opts.StorageKey,
		UserID:     g.opts.Viewer.UserID,
		Reason:     reason,
		Instance:   cloneWidget(instance),
		Count:      count,
		OccurredAt: g.opts.Now().UTC(),
	}
	if err := hooks.WidgetUpdated(ctx, event); err != nil {
		g.opts.Logger.Warn("dashboard: refresh hook failed", "reason", reason, "error", err)
	}
}

func (g *Grid) indexOf(id string) int {
	for i, w := range g.widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func renumber(widgets []WidgetInstance) {
	for i := range widgets {
		widgets[i].Position = i
	}
}

func nonNilWidgets(widgets []WidgetInstance) []WidgetInstance {
	if widgets == nil {
		return []WidgetInstance{}
	}
	return widgets
}

func cloneWidgets(widgets []WidgetInstance) []WidgetInstance {
	out := make([]WidgetInstance, len(widgets))
	for i, w := range widgets {
		out[i] = cloneWidget(w)
	}
	return out
}

func cloneWidget(w WidgetInstance) WidgetInstance {
	w.Config = cloneConfig(w.Config)
	return w
}

func cloneConfig(config map[string]any) map[string]any {
	if len(config) == 0 {
		return nil
	}
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = v
	}
	return out
}
