package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func(t WidgetType) string {
		n++
		return fmt.Sprintf("%s-%d", t, n)
	}
}

func newTestGrid(t *testing.T, store LayoutStore) *Grid {
	t.Helper()
	grid, err := NewGrid(GridOptions{
		Store:       store,
		Catalog:     NewRegistry(),
		IDGenerator: sequentialIDs(),
	})
	require.NoError(t, err)
	grid.Load(context.Background())
	return grid
}

func storedWidgets(t *testing.T, store *InMemoryLayoutStore, key string) []WidgetInstance {
	t.Helper()
	payload, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	var out []WidgetInstance
	require.NoError(t, json.Unmarshal(payload, &out))
	return out
}

func ids(widgets []WidgetInstance) []string {
	out := make([]string, len(widgets))
	for i, w := range widgets {
		out[i] = w.ID
	}
	return out
}

func assertDense(t *testing.T, widgets []WidgetInstance) {
	t.Helper()
	for i, w := range widgets {
		assert.Equal(t, i, w.Position, "widget %s", w.ID)
	}
}

func TestNewGridRequiresStoreAndCatalog(t *testing.T) {
	_, err := NewGrid(GridOptions{Catalog: NewRegistry()})
	assert.ErrorIs(t, err, errMissingStore)
	_, err = NewGrid(GridOptions{Store: NewInMemoryLayoutStore()})
	assert.ErrorIs(t, err, errMissingCatalog)
}

func TestGridAddUsesDefaultSizeAndPersists(t *testing.T) {
	store := NewInMemoryLayoutStore()
	grid := newTestGrid(t, store)
	ctx := context.Background()

	count, err := grid.Add(ctx, TypeTotalDreams, nil)
	require.NoError(t, err)
	chart, err := grid.Add(ctx, TypeSymbolChart, nil)
	require.NoError(t, err)

	assert.Equal(t, SizeSmall, count.Size)
	assert.Equal(t, SizeLarge, chart.Size)
	assert.Equal(t, 0, count.Position)
	assert.Equal(t, 1, chart.Position)

	persisted := storedWidgets(t, store, DefaultStorageKey)
	assert.Equal(t, ids(grid.Widgets()), ids(persisted))
}

func TestGridAddRejectsUnknownTypeAndInvalidConfig(t *testing.T) {
	grid := newTestGrid(t, NewInMemoryLayoutStore())
	ctx := context.Background()

	_, err := grid.Add(ctx, WidgetType("weather"), nil)
	assert.ErrorIs(t, err, ErrUnknownWidgetType)

	_, err = grid.Add(ctx, TypeSymbolDistribution, map[string]any{"limit": "many"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, grid.Widgets())
}

func TestGridIDsStayUniqueWhenGeneratorCollides(t *testing.T) {
	calls := 0
	grid, err := NewGrid(GridOptions{
		Store:   NewInMemoryLayoutStore(),
		Catalog: NewRegistry(),
		IDGenerator: func(t WidgetType) string {
			calls++
			if calls <= 2 {
				return "fixed"
			}
			return fmt.Sprintf("fresh-%d", calls)
		},
	})
	require.NoError(t, err)
	ctx := context.Background()
	first, err := grid.Add(ctx, TypeTotalDreams, nil)
	require.NoError(t, err)
	second, err := grid.Add(ctx, TypeTotalDreams, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGridDefaultIDsCarryTypePrefix(t *testing.T) {
	grid, err := NewGrid(GridOptions{Store: NewInMemoryLayoutStore(), Catalog: NewRegistry()})
	require.NoError(t, err)
	w, err := grid.Add(context.Background(), TypeTestChart, nil)
	require.NoError(t, err)
	assert.Regexp(t, `^test_chart-[0-9a-f-]{36}$`, w.ID)
}

func TestGridRemoveRenumbersAndIsIdempotent(t *testing.T) {
	store := NewInMemoryLayoutStore()
	grid := newTestGrid(t, store)
	ctx := context.Background()
	a, _ := grid.Add(ctx, TypeTotalDreams, nil)
	b, _ := grid.Add(ctx, TypeTotalClients, nil)
	c, _ := grid.Add(ctx, TypeTotalSessions, nil)

	assert.True(t, grid.Remove(ctx, b.ID))
	assert.Equal(t, []string{a.ID, c.ID}, ids(grid.Widgets()))
	assertDense(t, grid.Widgets())

	before := storedWidgets(t, store, DefaultStorageKey)
	assert.False(t, grid.Remove(ctx, b.ID))
	assert.Equal(t, before, storedWidgets(t, store, DefaultStorageKey))
}

func TestGridAddThenRemoveAllPersistsEmptyArray(t *testing.T) {
	store := NewInMemoryLayoutStore()
	grid := newTestGrid(t, store)
	ctx := context.Background()
	var added []WidgetInstance
	for _, typ := range []WidgetType{TypeTotalDreams, TypeTestDistribution, TypeCategoryChart} {
		w, err := grid.Add(ctx, typ, nil)
		require.NoError(t, err)
		added = append(added, w)
	}
	for _, w := range added {
		grid.Remove(ctx, w.ID)
	}
	payload, err := store.Load(ctx, DefaultStorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(payload))
}

func TestGridCycleSizeReturnsToStartAfterThreeSteps(t *testing.T) {
	grid := newTestGrid(t, NewInMemoryLayoutStore())
	ctx := context.Background()
	w, err := grid.Add(ctx, TypeSymbolDistribution, nil)
	require.NoError(t, err)
	require.Equal(t, SizeMedium, w.Size)

	var seen []WidgetSize
	for i := 0; i < 3; i++ {
		size, ok := grid.CycleSize(ctx, w.ID)
		require.True(t, ok)
		seen = append(seen, size)
	}
	assert.Equal(t, []WidgetSize{SizeLarge, SizeSmall, SizeMedium}, seen)
}

func TestGridCycleSizeRespectsCatalogBounds(t *testing.T) {
	grid := newTestGrid(t, NewInMemoryLayoutStore())
	ctx := context.Background()
	w, err := grid.Add(ctx, TypeSymbolChart, nil)
	require.NoError(t, err)

	size, ok := grid.CycleSize(ctx, w.ID)
	require.True(t, ok)
	assert.Equal(t, SizeMedium, size)
	size, _ = grid.CycleSize(ctx, w.ID)
	assert.Equal(t, SizeLarge, size)

	_, ok = grid.CycleSize(ctx, "missing")
	assert.False(t, ok)
}

func TestGridResizeValidatesSize(t *testing.T) {
	grid := newTestGrid(t, NewInMemoryLayoutStore())
	ctx := context.Background()
	w, _ := grid.Add(ctx, TypeTotalDreams, nil)

	_, err := grid.Resize(ctx, w.ID, WidgetSize("huge"))
	assert.ErrorIs(t, err, ErrInvalidSize)

	ok, err := grid.Resize(ctx, w.ID, SizeLarge)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := grid.Widget(w.ID)
	assert.Equal(t, SizeLarge, got.Size)
	assert.Equal(t, 0, got.Position)

	ok, err = grid.Resize(ctx, "missing", SizeSmall)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGridReorder(t *testing.T) {
	cases := []struct {
		name   string
		drag   int
		target int
		want   []int
	}{
		{name: "first to end", drag: 0, target: 2, want: []int{1, 2, 0}},
		{name: "last to front", drag: 2, target: 0, want: []int{2, 0, 1}},
		{name: "middle to front", drag: 1, target: 0, want: []int{1, 0, 2}},
		{name: "onto itself", drag: 1, target: 1, want: []int{0, 1, 2}},
		{name: "target clamped", drag: 0, target: 9, want: []int{1, 2, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid := newTestGrid(t, NewInMemoryLayoutStore())
			ctx := context.Background()
			var added []WidgetInstance
			for _, typ := range []WidgetType{TypeTotalDreams, TypeTotalClients, TypeTotalSessions} {
				w, err := grid.Add(ctx, typ, nil)
				require.NoError(t, err)
				added = append(added, w)
			}
			require.True(t, grid.Reorder(ctx, added[tc.drag].ID, tc.target))
			want := make([]string, len(tc.want))
			for i, idx := range tc.want {
				want[i] = added[idx].ID
			}
			assert.Equal(t, want, ids(grid.Widgets()))
			assertDense(t, grid.Widgets())
		})
	}
}

func TestGridReorderUnknownIDIsNoop(t *testing.T) {
	grid := newTestGrid(t, NewInMemoryLayoutStore())
	ctx := context.Background()
	grid.Add(ctx, TypeTotalDreams, nil)
	assert.False(t, grid.Reorder(ctx, "missing", 0))
}

func TestGridLoadRoundTrip(t *testing.T) {
	store := NewInMemoryLayoutStore()
	grid := newTestGrid(t, store)
	ctx := context.Background()
	grid.Add(ctx, TypeTotalDreams, nil)
	grid.Add(ctx, TypeSymbolDistribution, map[string]any{"limit": float64(3)})
	w, _ := grid.Add(ctx, TypeTestChart, nil)
	grid.Resize(ctx, w.ID, SizeMedium)

	reloaded := newTestGrid(t, store)
	assert.Equal(t, grid.Widgets(), reloaded.Widgets())
}

func TestGridLoadToleratesBadPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":     "not json",
		"object":       `{"id":"a"}`,
		"null":         `null`,
		"invalid size": `[{"id":"a","type":"total_dreams","position":0,"size":"huge"}]`,
		"missing id":   `[{"type":"total_dreams","position":0,"size":"small"}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewInMemoryLayoutStore()
			require.NoError(t, store.Save(context.Background(), DefaultStorageKey, []byte(payload)))
			grid := newTestGrid(t, store)
			assert.Empty(t, grid.Widgets())
		})
	}
}

func TestGridLoadOrdersByPositionAndDropsDuplicates(t *testing.T) {
	store := NewInMemoryLayoutStore()
	payload := `[
		{"id":"c","type":"total_sessions","position":7,"size":"small"},
		{"id":"a","type":"total_dreams","position":1,"size":"small"},
		{"id":"b","type":"legacy_widget","position":3,"size":"medium"},
		{"id":"a","type":"total_clients","position":5,"size":"small"}
	]`
	require.NoError(t, store.Save(context.Background(), DefaultStorageKey, []byte(payload)))
	grid := newTestGrid(t, store)

	widgets := grid.Widgets()
	assert.Equal(t, []string{"a", "b", "c"}, ids(widgets))
	assert.Equal(t, TypeTotalDreams, widgets[0].Type)
	assert.Equal(t, WidgetType("legacy_widget"), widgets[1].Type)
	assertDense(t, widgets)
}

func TestGridLoadRunsOnce(t *testing.T) {
	store := NewInMemoryLayoutStore()
	grid := newTestGrid(t, store)
	ctx := context.Background()
	grid.Add(ctx, TypeTotalDreams, nil)

	require.NoError(t, store.Save(ctx, DefaultStorageKey, []byte(`[]`)))
	assert.Len(t, grid.Load(ctx), 1)
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk unavailable")
}

func (failingStore) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestGridKeepsMemoryWhenStoreFails(t *testing.T) {
	var events []string
	grid, err := NewGrid(GridOptions{
		Store:   failingStore{},
		Catalog: NewRegistry(),
		Telemetry: TelemetryFunc(func(_ context.Context, event string, _ map[string]any) {
			events = append(events, event)
		}),
	})
	require.NoError(t, err)
	ctx := context.Background()
	grid.Load(ctx)
	w, err := grid.Add(ctx, TypeTotalDreams, nil)
	require.NoError(t, err)
	_, ok := grid.Widget(w.ID)
	assert.True(t, ok)
	assert.Contains(t, events, "dashboard.layout.persist_error")
}

type captureHook struct {
	events []LayoutEvent
}

func (h *captureHook) WidgetUpdated(_ context.Context, event LayoutEvent) error {
	h.events = append(h.events, event)
	return nil
}

func TestGridEmitsLayoutEvents(t *testing.T) {
	hook := &captureHook{}
	grid, err := NewGrid(GridOptions{
		Store:       NewInMemoryLayoutStore(),
		Catalog:     NewRegistry(),
		StorageKey:  "custom",
		Viewer:      ViewerContext{UserID: "user-1"},
		RefreshHook: hook,
		IDGenerator: sequentialIDs(),
	})
	require.NoError(t, err)
	ctx := context.Background()
	grid.Load(ctx)
	a, _ := grid.Add(ctx, TypeTotalDreams, nil)
	b, _ := grid.Add(ctx, TypeTotalClients, nil)
	grid.Resize(ctx, a.ID, SizeMedium)
	grid.Reorder(ctx, a.ID, 1)
	grid.Remove(ctx, b.ID)

	reasons := make([]string, len(hook.events))
	for i, e := range hook.events {
		reasons[i] = e.Reason
		assert.Equal(t, "custom", e.StorageKey)
		assert.Equal(t, "user-1", e.UserID)
	}
	assert.Equal(t, []string{ReasonAdd, ReasonAdd, ReasonResize, ReasonReorder, ReasonRemove}, reasons)
	assert.Equal(t, 1, hook.events[4].Count)
}

func TestGridWidgetsReturnsCopies(t *testing.T) {
	grid := newTestGrid(t, NewInMemoryLayoutStore())
	ctx := context.Background()
	grid.Add(ctx, TypeSymbolDistribution, map[string]any{"limit": 3})

	snapshot := grid.Widgets()
	snapshot[0].Config["limit"] = 99
	snapshot[0].Size = SizeLarge

	fresh := grid.Widgets()
	assert.Equal(t, 3, fresh[0].Config["limit"])
	assert.Equal(t, SizeMedium, fresh[0].Size)
}

func TestGridPresentTypes(t *testing.T) {
	grid := newTestGrid(t, NewInMemoryLayoutStore())
	ctx := context.Background()
	grid.Add(ctx, TypeTotalDreams, nil)
	grid.Add(ctx, TypeRequestWidget, nil)
	grid.Add(ctx, TypeTotalDreams, nil)
	assert.Equal(t, []WidgetType{TypeTotalDreams, TypeRequestWidget}, grid.PresentTypes())
}

func assertUniqueIDs(t *testing.T, widgets []WidgetInstance) {
	t.Helper()
	seen := make(map[string]struct{}, len(widgets))
	for _, w := range widgets {
		_, dup := seen[w.ID]
		require.False(t, dup, "duplicate id %s", w.ID)
		seen[w.ID] = struct{}{}
	}
}

func TestGridStaysDenseAcrossOperationSequences(t *testing.T) {
	types := []WidgetType{TypeTotalDreams, TypeSymbolDistribution, TypeSymbolChart, TypeTotalClients}
	for _, seed := range []uint64{1, 7, 42, 2026} {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed))
			store := NewInMemoryLayoutStore()
			grid := newTestGrid(t, store)
			ctx := context.Background()

			for step := 0; step < 200; step++ {
				widgets := grid.Widgets()
				switch op := rng.IntN(4); {
				case op == 0 || len(widgets) == 0:
					_, err := grid.Add(ctx, types[rng.IntN(len(types))], nil)
					require.NoError(t, err)
				case op == 1:
					grid.Remove(ctx, widgets[rng.IntN(len(widgets))].ID)
				case op == 2:
					grid.Reorder(ctx, widgets[rng.IntN(len(widgets))].ID, rng.IntN(len(widgets)+2)-1)
				default:
					grid.Remove(ctx, "missing")
				}

				current := grid.Widgets()
				assertDense(t, current)
				assertUniqueIDs(t, current)
				assert.Equal(t, ids(current), ids(storedWidgets(t, store, DefaultStorageKey)), "step %d", step)
			}
		})
	}
}
