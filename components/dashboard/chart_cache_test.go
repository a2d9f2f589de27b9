package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyRecorder wraps ChartCache and counts renders per key.
type keyRecorder struct {
	cache   *ChartCache
	keys    []string
	renders map[string]int
}

func newKeyRecorder(ttl time.Duration) *keyRecorder {
	return &keyRecorder{cache: NewChartCache(ttl), renders: make(map[string]int)}
}

func (r *keyRecorder) GetOrRender(key string, render func() (string, error)) (string, error) {
	r.keys = append(r.keys, key)
	return r.cache.GetOrRender(key, func() (string, error) {
		r.renders[key]++
		return render()
	})
}

func (r *keyRecorder) totalRenders() int {
	total := 0
	for _, n := range r.renders {
		total += n
	}
	return total
}

func renderSymbolChart(t *testing.T, cache RenderCache, instance WidgetInstance, symbols []SymbolCount, locale string) WidgetView {
	t.Helper()
	d := NewDispatcher(NewRegistry(), WithChartOptions(WithChartCache(cache)))
	snapshot := MetricsSnapshot{Distributions: Distributions{Symbols: symbols}}
	view := d.Render(context.Background(), instance, &snapshot, ViewerContext{Locale: locale})
	require.Empty(t, view.Error)
	return view
}

func TestChartCacheKeysOnWidgetSizeAndInputs(t *testing.T) {
	rec := newKeyRecorder(time.Minute)
	chart := WidgetInstance{ID: "symbol_chart-1", Type: TypeSymbolChart, Size: SizeMedium}
	symbols := manySymbols(12)

	first := renderSymbolChart(t, rec, chart, symbols, "en")
	second := renderSymbolChart(t, rec, chart, symbols, "en")
	assert.Equal(t, first.Data["chart_html"], second.Data["chart_html"])
	assert.Equal(t, 1, rec.totalRenders())
	require.Len(t, rec.keys, 2)
	assert.True(t, strings.HasPrefix(rec.keys[0], "symbol_chart-1:bar:medium:"), rec.keys[0])
	assert.Equal(t, rec.keys[0], rec.keys[1])

	resized := chart
	resized.Size = SizeLarge
	renderSymbolChart(t, rec, resized, symbols, "en")

	other := chart
	other.ID = "symbol_chart-2"
	renderSymbolChart(t, rec, other, symbols, "en")

	renderSymbolChart(t, rec, chart, manySymbols(3), "en")
	renderSymbolChart(t, rec, chart, symbols, "es")

	configured := chart
	configured.Config = map[string]any{"subtitle": "Last 30 days"}
	renderSymbolChart(t, rec, configured, symbols, "en")

	assert.Equal(t, 6, rec.totalRenders())
	for key, n := range rec.renders {
		assert.Equal(t, 1, n, "key %s rendered more than once", key)
	}
}

func TestChartCacheExpiresEntries(t *testing.T) {
	rec := newKeyRecorder(time.Minute)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec.cache.now = func() time.Time { return now }
	chart := WidgetInstance{ID: "symbol_chart-1", Type: TypeSymbolChart, Size: SizeSmall}

	renderSymbolChart(t, rec, chart, manySymbols(4), "")
	now = now.Add(30 * time.Second)
	renderSymbolChart(t, rec, chart, manySymbols(4), "")
	assert.Equal(t, 1, rec.totalRenders())

	now = now.Add(time.Minute)
	renderSymbolChart(t, rec, chart, manySymbols(4), "")
	assert.Equal(t, 2, rec.totalRenders())
}

func TestChartCacheZeroTTLDisablesMemoization(t *testing.T) {
	rec := newKeyRecorder(0)
	chart := WidgetInstance{ID: "symbol_chart-1", Type: TypeSymbolChart, Size: SizeSmall}
	renderSymbolChart(t, rec, chart, manySymbols(4), "")
	renderSymbolChart(t, rec, chart, manySymbols(4), "")
	assert.Equal(t, 2, rec.totalRenders())
}

func TestChartCacheDoesNotStoreRenderErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	key := "symbol_chart-1:bar:small:" + configHash(map[string]any{"locale": ""})
	calls := 0
	_, err := cache.GetOrRender(key, func() (string, error) {
		calls++
		return "", errors.New("render failed")
	})
	require.Error(t, err)

	html, err := cache.GetOrRender(key, func() (string, error) {
		calls++
		return "<div>chart</div>", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "<div>chart</div>", html)
	assert.Equal(t, 2, calls)
}

func TestConfigHashIgnoresKeyOrder(t *testing.T) {
	a := configHash(map[string]any{"config": map[string]any{"limit": 5, "theme": "dark"}, "locale": "en"})
	b := configHash(map[string]any{"locale": "en", "config": map[string]any{"theme": "dark", "limit": 5}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, configHash(map[string]any{"locale": "es", "config": map[string]any{"theme": "dark", "limit": 5}}))
	assert.Equal(t, "empty", configHash(nil))
}
