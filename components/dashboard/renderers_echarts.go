package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var sharedChartCache = NewChartCache(5 * time.Minute)

func chartThemes() []string {
	return []string{
		types.ThemeWesteros,
		types.ThemeWalden,
		types.ThemeWonderland,
		types.ThemeChalk,
	}
}

// EChartsRenderer renders a ranked metrics series as server-side go-echarts markup.
type EChartsRenderer struct {
	chartType  string
	series     seriesFunc
	cache      RenderCache
	theme      string
	assetsHost string
}

// EChartsRendererOption customizes renderer behavior.
type EChartsRendererOption func(*EChartsRenderer)

// WithChartCache injects a render cache. A nil cache disables memoization.
func WithChartCache(cache RenderCache) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the default theme (Westeros unless overridden).
func WithChartTheme(theme string) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so the ECharts runtime loads from a CDN or
// self-hosted bucket.
func WithChartAssetsHost(host string) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds a renderer for a chart type (bar or pie).
func NewEChartsRenderer(chartType string, series seriesFunc, options ...EChartsRendererOption) *EChartsRenderer {
	r := &EChartsRenderer{
		chartType: strings.ToLower(chartType),
		series:    series,
		cache:     sharedChartCache,
		theme:     types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render plots the top points for the widget size.
func (r *EChartsRenderer) Render(_ context.Context, input RenderInput) (WidgetData, error) {
	cfg := input.Instance.Config
	limit := configLimit(cfg, ChartLimit(input.Instance.Size))
	points := r.series(*input.Metrics, limit)
	title := input.Entry.TitleForLocale(input.Viewer.Locale)
	subtitle := stringValue(cfg["subtitle"], "")
	theme := stringValue(cfg["theme"], r.theme)

	data := WidgetData{
		"chart_type": r.chartType,
		"points":     points,
		"theme":      theme,
		"empty":      len(points) == 0,
	}
	if len(points) == 0 {
		return data, nil
	}

	renderFn := func() (string, error) {
		return r.render(title, subtitle, theme, points)
	}
	var (
		html string
		err  error
	)
	if r.cache != nil {
		key := fmt.Sprintf("%s:%s:%s:%s", input.Instance.ID, r.chartType, input.Instance.Size, configHash(map[string]any{
			"config": cfg,
			"points": points,
			"locale": input.Viewer.Locale,
		}))
		html, err = r.cache.GetOrRender(key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return nil, err
	}
	data["chart_html"] = html
	return data, nil
}

func (r *EChartsRenderer) render(title, subtitle, theme string, points []RankedItem) (string, error) {
	switch r.chartType {
	case "bar":
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalChartOptions(title, subtitle, theme)...)
		labels := make([]string, len(points))
		values := make([]opts.BarData, len(points))
		for i, p := range points {
			labels[i] = p.Label
			values[i] = opts.BarData{Name: p.Label, Value: p.Count}
		}
		bar.SetXAxis(labels)
		bar.AddSeries(title, values)
		return renderChart(bar)
	case "pie":
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalChartOptions(title, subtitle, theme)...)
		values := make([]opts.PieData, len(points))
		for i, p := range points {
			name := p.Label
			if name == "" {
				name = fmt.Sprintf("Slice %d", i+1)
			}
			values[i] = opts.PieData{Name: name, Value: p.Count}
		}
		pie.AddSeries(title, values)
		return renderChart(pie)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", r.chartType)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalChartOptions(title, subtitle, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(r.chartType == "pie")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}
