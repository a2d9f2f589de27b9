package dashboard

import (
	"context"
	"sort"
)

// MetricsSource fetches the aggregate statistics snapshot widgets render from.
type MetricsSource interface {
	FetchMetrics(ctx context.Context) (MetricsSnapshot, error)
}

// MetricsSourceFunc adapts a function into a MetricsSource.
type MetricsSourceFunc func(ctx context.Context) (MetricsSnapshot, error)

// FetchMetrics calls f.
func (f MetricsSourceFunc) FetchMetrics(ctx context.Context) (MetricsSnapshot, error) {
	return f(ctx)
}

// StaticMetricsSource always returns the same snapshot.
type StaticMetricsSource struct {
	Snapshot MetricsSnapshot
}

// FetchMetrics returns the configured snapshot.
func (s StaticMetricsSource) FetchMetrics(context.Context) (MetricsSnapshot, error) {
	return s.Snapshot, nil
}

// MetricsSnapshot is a point-in-time aggregate of platform activity.
type MetricsSnapshot struct {
	Counts        MetricCounts  `json:"counts"`
	Distributions Distributions `json:"distributions"`
}

// MetricCounts holds scalar totals.
type MetricCounts struct {
	Dreams         int `json:"dreams"`
	Clients        int `json:"clients"`
	Sessions       int `json:"sessions"`
	Amplifications int `json:"amplifications"`
	JournalEntries int `json:"journalEntries"`
	TestResults    int `json:"testResults"`
}

// Distributions holds named frequency tables.
type Distributions struct {
	Symbols    []SymbolCount  `json:"symbols"`
	Tests      map[string]int `json:"tests"`
	Categories map[string]int `json:"categories"`
}

// SymbolCount is a single dream symbol frequency.
type SymbolCount struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// RankedItem is a labelled count in a ranked list.
type RankedItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RankSymbols orders symbol counts by count descending then label, keeping at most limit rows.
func RankSymbols(symbols []SymbolCount, limit int) []RankedItem {
	items := make([]RankedItem, 0, len(symbols))
	for _, s := range symbols {
		items = append(items, RankedItem{Label: s.Symbol, Count: s.Count})
	}
	return rank(items, limit)
}

// RankTable orders a frequency table by count descending then label, keeping at most limit rows.
func RankTable(table map[string]int, limit int) []RankedItem {
	items := make([]RankedItem, 0, len(table))
	for label, count := range table {
		items = append(items, RankedItem{Label: label, Count: count})
	}
	return rank(items, limit)
}

func rank(items []RankedItem, limit int) []RankedItem {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
