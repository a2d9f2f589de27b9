package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
)

func newHookedGrid(t *testing.T, emitter *Emitter) *dashboard.Grid {
	t.Helper()
	n := 0
	grid, err := dashboard.NewGrid(dashboard.GridOptions{
		Store:       dashboard.NewInMemoryLayoutStore(),
		Catalog:     dashboard.NewRegistry(),
		StorageKey:  "researcherDashboardWidgets::user-1",
		Viewer:      dashboard.ViewerContext{UserID: "user-1"},
		RefreshHook: NewLayoutHook(emitter),
		IDGenerator: func(wt dashboard.WidgetType) string {
			n++
			return fmt.Sprintf("%s-%d", wt, n)
		},
	})
	if err != nil {
		t.Fatalf("NewGrid returned error: %v", err)
	}
	grid.Load(context.Background())
	return grid
}

func TestLayoutHookMapsLayoutEvent(t *testing.T) {
	capture := &CaptureHook{}
	hook := NewLayoutHook(NewEmitter(Hooks{capture}, Config{Enabled: true}))
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ctx := dashboard.ContextWithActivity(context.Background(), dashboard.ActivityContext{TenantID: "tenant-1"})
	err := hook.WidgetUpdated(ctx, dashboard.LayoutEvent{
		StorageKey: "researcherDashboardWidgets::user-1",
		UserID:     "user-1",
		Reason:     dashboard.ReasonResize,
		Instance:   dashboard.WidgetInstance{ID: "symbol_chart-1", Type: dashboard.TypeSymbolChart, Size: dashboard.SizeLarge},
		Count:      3,
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.Events))
	}
	evt := capture.Events[0]
	if evt.Verb != "dashboard.widget.resize" || evt.ObjectType != ObjectTypeWidget || evt.ObjectID != "symbol_chart-1" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.UserID != "user-1" || evt.ActorID != "user-1" || evt.TenantID != "tenant-1" {
		t.Fatalf("unexpected actor context %+v", evt)
	}
	if evt.Channel != DefaultChannel || !evt.OccurredAt.Equal(at) {
		t.Fatalf("unexpected channel/time %+v", evt)
	}
	if evt.Metadata["size"] != "large" || evt.Metadata["count"] != 3 {
		t.Fatalf("unexpected metadata %+v", evt.Metadata)
	}
}

func TestLayoutHookDisabledEmitterIsNoop(t *testing.T) {
	capture := &CaptureHook{}
	hook := NewLayoutHook(NewEmitter(Hooks{capture}, Config{Enabled: false}))
	if err := hook.WidgetUpdated(context.Background(), dashboard.LayoutEvent{Reason: dashboard.ReasonAdd, Instance: dashboard.WidgetInstance{ID: "w"}}); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(capture.Events))
	}
}

func TestLayoutHookRecordsGridMutations(t *testing.T) {
	capture := &CaptureHook{}
	grid := newHookedGrid(t, NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "research"}))
	ctx := context.Background()

	dreams, err := grid.Add(ctx, dashboard.TypeTotalDreams, nil)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	chart, err := grid.Add(ctx, dashboard.TypeSymbolChart, nil)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !grid.Reorder(ctx, chart.ID, 0) {
		t.Fatalf("expected reorder to apply")
	}
	if !grid.Remove(ctx, dreams.ID) {
		t.Fatalf("expected remove to apply")
	}
	grid.Remove(ctx, dreams.ID)

	want := []struct {
		verb     string
		objectID string
		position int
		count    int
	}{
		{"dashboard.widget.add", dreams.ID, 0, 1},
		{"dashboard.widget.add", chart.ID, 1, 2},
		{"dashboard.widget.reorder", chart.ID, 0, 2},
		{"dashboard.widget.remove", dreams.ID, 1, 1},
	}
	if len(capture.Events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(capture.Events), capture.Events)
	}
	for i, w := range want {
		evt := capture.Events[i]
		if evt.Verb != w.verb || evt.ObjectID != w.objectID {
			t.Fatalf("event %d: expected %s %s, got %s %s", i, w.verb, w.objectID, evt.Verb, evt.ObjectID)
		}
		if evt.Channel != "research" || evt.ObjectType != ObjectTypeWidget || evt.UserID != "user-1" {
			t.Fatalf("event %d: unexpected envelope %+v", i, evt)
		}
		if evt.Metadata["position"] != w.position || evt.Metadata["count"] != w.count {
			t.Fatalf("event %d: unexpected metadata %+v", i, evt.Metadata)
		}
		if evt.Metadata["storage_key"] != "researcherDashboardWidgets::user-1" {
			t.Fatalf("event %d: unexpected storage key %v", i, evt.Metadata["storage_key"])
		}
		if evt.OccurredAt.IsZero() {
			t.Fatalf("event %d: missing occurred_at", i)
		}
	}
}

func TestLayoutHookWithoutHooksIsDisabled(t *testing.T) {
	emitter := NewEmitter(nil, Config{Enabled: true})
	if emitter.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
	grid := newHookedGrid(t, emitter)
	if _, err := grid.Add(context.Background(), dashboard.TypeTotalClients, nil); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
}

func TestLayoutHookSkipsEventsWithoutWidgetID(t *testing.T) {
	var calls int
	hook := NewLayoutHook(NewEmitter(Hooks{HookFunc(func(context.Context, Event) error {
		calls++
		return nil
	})}, Config{Enabled: true}))

	if err := hook.WidgetUpdated(context.Background(), dashboard.LayoutEvent{Reason: dashboard.ReasonRemove}); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected event without widget id to be skipped")
	}
	err := hook.WidgetUpdated(context.Background(), dashboard.LayoutEvent{
		Reason:   dashboard.ReasonRemove,
		Instance: dashboard.WidgetInstance{ID: " total_dreams-1 "},
	})
	if err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected hook called once, got %d", calls)
	}
}

func TestNormalizeEventTrimsAndClonesLayoutMetadata(t *testing.T) {
	capture := &CaptureHook{}
	grid := newHookedGrid(t, NewEmitter(Hooks{capture}, Config{Enabled: true}))
	if _, err := grid.Add(context.Background(), dashboard.TypeSymbolDistribution, nil); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	original := capture.Events[0]
	original.ObjectID = "  " + original.ObjectID + "  "

	n := NormalizeEvent(original)
	if n.ObjectID != "symbol_distribution-1" {
		t.Fatalf("expected trimmed object id, got %q", n.ObjectID)
	}
	n.Metadata["size"] = "large"
	if original.Metadata["size"] != string(dashboard.SizeMedium) {
		t.Fatalf("original metadata mutated: %+v", original.Metadata)
	}
}
