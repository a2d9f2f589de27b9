package dashboard

import (
	"context"
	"encoding/json"
	"strconv"
)

// seriesFunc extracts a ranked series from the snapshot.
type seriesFunc func(metrics MetricsSnapshot, limit int) []RankedItem

func symbolSeries(metrics MetricsSnapshot, limit int) []RankedItem {
	return RankSymbols(metrics.Distributions.Symbols, limit)
}

func testSeries(metrics MetricsSnapshot, limit int) []RankedItem {
	return RankTable(metrics.Distributions.Tests, limit)
}

func categorySeries(metrics MetricsSnapshot, limit int) []RankedItem {
	return RankTable(metrics.Distributions.Categories, limit)
}

func countRenderer(pick func(MetricCounts) int) WidgetRenderer {
	return RendererFunc(func(_ context.Context, input RenderInput) (WidgetData, error) {
		return WidgetData{
			"value": pick(input.Metrics.Counts),
			"label": input.Entry.TitleForLocale(input.Viewer.Locale),
		}, nil
	})
}

func distributionRenderer(series seriesFunc) WidgetRenderer {
	return RendererFunc(func(_ context.Context, input RenderInput) (WidgetData, error) {
		limit := configLimit(input.Instance.Config, ListLimit(input.Instance.Size))
		all := series(*input.Metrics, 0)
		total := 0
		for _, item := range all {
			total += item.Count
		}
		rows := all
		if limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}
		return WidgetData{
			"rows":  rows,
			"total": total,
			"limit": limit,
			"empty": len(rows) == 0,
		}, nil
	})
}

func requestRenderer() WidgetRenderer {
	return RendererFunc(func(_ context.Context, input RenderInput) (WidgetData, error) {
		data := WidgetData{
			"message": input.Entry.DescriptionForLocale(input.Viewer.Locale),
		}
		if email := stringValue(input.Instance.Config["contact_email"], ""); email != "" {
			data["contact_email"] = email
		}
		return data, nil
	})
}

// configLimit reads an optional "limit" override from widget config. Stored config is
// not revalidated on load, so values outside 1..maxConfigLimit use the fallback.
func configLimit(config map[string]any, fallback int) int {
	switch v := config["limit"].(type) {
	case int:
		if v >= 1 && v <= maxConfigLimit {
			return v
		}
	case int64:
		if v >= 1 && v <= maxConfigLimit {
			return int(v)
		}
	case float64:
		if v >= 1 && v <= maxConfigLimit {
			return int(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n >= 1 && n <= maxConfigLimit {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= maxConfigLimit {
			return n
		}
	}
	return fallback
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
