package dashboard

import (
	"context"
	"fmt"
)

// WidgetData is an opaque payload passed to templates.
type WidgetData map[string]any

// RenderInput carries everything a renderer may look at. Renderers are pure functions
// of this input: no fetching, no mutation.
type RenderInput struct {
	Instance WidgetInstance
	Entry    CatalogEntry
	Metrics  *MetricsSnapshot
	Viewer   ViewerContext
}

// WidgetRenderer turns a widget instance and the metrics snapshot into template data.
type WidgetRenderer interface {
	Render(ctx context.Context, input RenderInput) (WidgetData, error)
}

// RendererFunc adapts a function into a WidgetRenderer.
type RendererFunc func(ctx context.Context, input RenderInput) (WidgetData, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, input RenderInput) (WidgetData, error) {
	return f(ctx, input)
}

// WidgetView is the render-ready representation of a single tile.
type WidgetView struct {
	ID         string         `json:"id"`
	Type       WidgetType     `json:"type"`
	Kind       WidgetKind     `json:"kind,omitempty"`
	Title      string         `json:"title"`
	Icon       string         `json:"icon,omitempty"`
	Position   int            `json:"position"`
	Size       WidgetSize     `json:"size"`
	NextSize   WidgetSize     `json:"next_size,omitempty"`
	Placement  GridPlacement  `json:"placement"`
	Config     map[string]any `json:"config,omitempty"`
	Loading    bool           `json:"loading,omitempty"`
	Unknown    bool           `json:"unknown,omitempty"`
	Error      string         `json:"error,omitempty"`
	Dragged    bool           `json:"dragged,omitempty"`
	DropTarget bool           `json:"drop_target,omitempty"`
	Data       WidgetData     `json:"data,omitempty"`
}

// UnknownWidgetTitle is shown on tiles whose type has no renderer.
const UnknownWidgetTitle = "Unknown widget"

// Dispatcher maps every widget type to its renderer.
type Dispatcher struct {
	catalog     Catalog
	symbolChart WidgetRenderer
	testChart   WidgetRenderer
	catChart    WidgetRenderer
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithChartOptions applies chart renderer options to every chart widget.
func WithChartOptions(options ...EChartsRendererOption) DispatcherOption {
	return func(d *Dispatcher) {
		d.symbolChart = NewEChartsRenderer("bar", symbolSeries, options...)
		d.testChart = NewEChartsRenderer("pie", testSeries, options...)
		d.catChart = NewEChartsRenderer("pie", categorySeries, options...)
	}
}

// NewDispatcher builds a dispatcher over the catalog.
func NewDispatcher(catalog Catalog, options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{catalog: catalog}
	WithChartOptions()(d)
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *Dispatcher) rendererFor(t WidgetType) (WidgetRenderer, bool) {
	switch t {
	case TypeTotalDreams:
		return countRenderer(func(c MetricCounts) int { return c.Dreams }), true
	case TypeTotalClients:
		return countRenderer(func(c MetricCounts) int { return c.Clients }), true
	case TypeTotalSessions:
		return countRenderer(func(c MetricCounts) int { return c.Sessions }), true
	case TypeTotalAmplifications:
		return countRenderer(func(c MetricCounts) int { return c.Amplifications }), true
	case TypeTotalJournalEntries:
		return countRenderer(func(c MetricCounts) int { return c.JournalEntries }), true
	case TypeTotalTestResults:
		return countRenderer(func(c MetricCounts) int { return c.TestResults }), true
	case TypeSymbolDistribution:
		return distributionRenderer(symbolSeries), true
	case TypeTestDistribution:
		return distributionRenderer(testSeries), true
	case TypeCategoryDistribution:
		return distributionRenderer(categorySeries), true
	case TypeSymbolChart:
		return d.symbolChart, true
	case TypeTestChart:
		return d.testChart, true
	case TypeCategoryChart:
		return d.catChart, true
	case TypeRequestWidget:
		return requestRenderer(), true
	default:
		return nil, false
	}
}

// Render produces the view for one instance. Unknown types and renderer failures are
// reported on the view instead of failing the board.
func (d *Dispatcher) Render(ctx context.Context, instance WidgetInstance, metrics *MetricsSnapshot, viewer ViewerContext) WidgetView {
	view := WidgetView{
		ID:        instance.ID,
		Type:      instance.Type,
		Position:  instance.Position,
		Size:      instance.Size,
		Placement: Placement(instance.Size),
		Config:    cloneConfig(instance.Config),
	}
	var (
		entry CatalogEntry
		found bool
	)
	if d.catalog != nil {
		entry, found = d.catalog.Entry(instance.Type)
	}
	renderer, known := d.rendererFor(instance.Type)
	if !found || !known || renderer == nil {
		view.Unknown = true
		view.Title = UnknownWidgetTitle
		view.NextSize = NextSize(instance.Size, SizeSmall, SizeLarge)
		return view
	}
	view.Kind = entry.Kind
	view.Title = entry.TitleForLocale(viewer.Locale)
	view.Icon = entry.Icon
	view.NextSize = NextSize(instance.Size, entry.MinSize, entry.MaxSize)
	if entry.Kind != KindRequest && metrics == nil {
		view.Loading = true
		return view
	}
	data, err := renderer.Render(ctx, RenderInput{
		Instance: instance,
		Entry:    entry,
		Metrics:  metrics,
		Viewer:   viewer,
	})
	if err != nil {
		view.Error = fmt.Sprintf("could not render %s: %v", view.Title, err)
		return view
	}
	view.Data = data
	return view
}
