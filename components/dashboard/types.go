package dashboard

import (
	"context"
	"time"
)

// WidgetType identifies a widget kind. The set is closed; see AllWidgetTypes.
type WidgetType string

const (
	TypeTotalDreams          WidgetType = "total_dreams"
	TypeTotalClients         WidgetType = "total_clients"
	TypeTotalSessions        WidgetType = "total_sessions"
	TypeTotalAmplifications  WidgetType = "total_amplifications"
	TypeTotalJournalEntries  WidgetType = "total_journal_entries"
	TypeTotalTestResults     WidgetType = "total_test_results"
	TypeSymbolDistribution   WidgetType = "symbol_distribution"
	TypeTestDistribution     WidgetType = "test_distribution"
	TypeCategoryDistribution WidgetType = "category_distribution"
	TypeSymbolChart          WidgetType = "symbol_chart"
	TypeTestChart            WidgetType = "test_chart"
	TypeCategoryChart        WidgetType = "category_chart"
	TypeRequestWidget        WidgetType = "request_widget"
)

var allWidgetTypes = []WidgetType{
	TypeTotalDreams,
	TypeTotalClients,
	TypeTotalSessions,
	TypeTotalAmplifications,
	TypeTotalJournalEntries,
	TypeTotalTestResults,
	TypeSymbolDistribution,
	TypeTestDistribution,
	TypeCategoryDistribution,
	TypeSymbolChart,
	TypeTestChart,
	TypeCategoryChart,
	TypeRequestWidget,
}

// AllWidgetTypes returns every known widget type in catalog order.
func AllWidgetTypes() []WidgetType {
	out := make([]WidgetType, len(allWidgetTypes))
	copy(out, allWidgetTypes)
	return out
}

// Valid reports whether t belongs to the closed widget type set.
func (t WidgetType) Valid() bool {
	for _, known := range allWidgetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// WidgetKind groups widget types that share a renderer family.
type WidgetKind string

const (
	KindCount        WidgetKind = "count"
	KindDistribution WidgetKind = "distribution"
	KindChart        WidgetKind = "chart"
	KindRequest      WidgetKind = "request"
)

// WidgetInstance is a single tile placed on the grid.
type WidgetInstance struct {
	ID       string         `json:"id"`
	Type     WidgetType     `json:"type"`
	Position int            `json:"position"`
	Size     WidgetSize     `json:"size"`
	Config   map[string]any `json:"config,omitempty"`
}

// ViewerContext captures the active user/locale information needed to scope and render dashboards.
type ViewerContext struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	Locale string   `json:"locale,omitempty"`
}

// RefreshHook notifies transports (REST/WebSocket) and observers about layout changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event LayoutEvent) error
}

// LayoutEvent describes a layout mutation.
type LayoutEvent struct {
	StorageKey string         `json:"storage_key"`
	UserID     string         `json:"user_id,omitempty"`
	Reason     string         `json:"reason"`
	Instance   WidgetInstance `json:"instance"`
	Count      int            `json:"count"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Layout event reasons.
const (
	ReasonAdd     = "add"
	ReasonRemove  = "remove"
	ReasonResize  = "resize"
	ReasonReorder = "reorder"
)

// RefreshHooks fans a layout event out to several hooks and returns the first error.
type RefreshHooks []RefreshHook

func (hooks RefreshHooks) WidgetUpdated(ctx context.Context, event LayoutEvent) error {
	var firstErr error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, LayoutEvent) error {
	return nil
}
