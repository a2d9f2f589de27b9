package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
	"github.com/goliatone/go-widgetgrid/components/dashboard/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func newTestServer(t *testing.T) (*httptest.Server, *dashboard.Service) {
	t.Helper()
	seq := 0
	service := dashboard.NewService(dashboard.Options{
		Metrics: dashboard.StaticMetricsSource{Snapshot: dashboard.MetricsSnapshot{
			Counts: dashboard.MetricCounts{Dreams: 4},
		}},
		IDGenerator: func(t dashboard.WidgetType) string {
			seq++
			return fmt.Sprintf("%s-%d", t, seq)
		},
	})
	handlers := &Handlers{API: NewCommandExecutor(service, nil)}
	mux := http.NewServeMux()
	handlers.Register(mux, "/admin")
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, service
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandlersWidgetLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	base := server.URL + "/admin/dashboard"

	resp := doJSON(t, http.MethodPost, base+"/widgets", map[string]any{"type": "total_dreams"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dashboard.WidgetInstance
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "total_dreams-1", created.ID)
	assert.Equal(t, dashboard.SizeSmall, created.Size)

	resp = doJSON(t, http.MethodPost, base+"/widgets", map[string]any{"type": "symbol_chart"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/widgets/total_dreams-1/resize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resized map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&resized))
	assert.Equal(t, "medium", resized["size"])

	resp = doJSON(t, http.MethodPost, base+"/widgets/reorder", map[string]any{"widget_id": "total_dreams-1", "target": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base+"/_layout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var board dashboard.Board
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	require.Len(t, board.Widgets, 2)
	assert.Equal(t, "symbol_chart-2", board.Widgets[0].ID)
	assert.Equal(t, "total_dreams-1", board.Widgets[1].ID)
	assert.Equal(t, dashboard.DefaultStorageKey+"::user-1", board.StorageKey)

	resp = doJSON(t, http.MethodDelete, base+"/widgets/total_dreams-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, http.MethodDelete, base+"/widgets/total_dreams-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHandlersErrorMapping(t *testing.T) {
	server, _ := newTestServer(t)
	base := server.URL + "/admin/dashboard"

	resp := doJSON(t, http.MethodPost, base+"/widgets", map[string]any{"type": "weather"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/widgets", map[string]any{"type": "symbol_chart", "config": map[string]any{"theme": "neon"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/widgets/missing/resize", map[string]any{"size": "large"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/widgets", map[string]any{"type": "total_clients"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, base+"/widgets/total_clients-1/resize", map[string]any{"size": "huge"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/widgets/reorder", map[string]any{"widget_id": "missing", "target": 0})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/drag", map[string]any{"kind": "teleport"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlersDragFlowCommitsOnDrop(t *testing.T) {
	server, service := newTestServer(t)
	base := server.URL + "/admin/dashboard"
	viewer := dashboard.ViewerContext{UserID: "user-1"}
	for _, typ := range []dashboard.WidgetType{dashboard.TypeTotalDreams, dashboard.TypeTotalClients, dashboard.TypeTotalSessions} {
		_, err := service.AddWidget(context.Background(), dashboard.AddWidgetRequest{Viewer: viewer, Type: typ})
		require.NoError(t, err)
	}

	resp := doJSON(t, http.MethodPost, base+"/drag", dashboard.DragEvent{Kind: dashboard.DragEventStart, WidgetID: "total_dreams-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, base+"/drag", dashboard.DragEvent{Kind: dashboard.DragEventOver, Position: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state dashboard.DragState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, dashboard.DragDraggingOver, state.Phase)

	resp = doJSON(t, http.MethodPost, base+"/drag", dashboard.DragEvent{Kind: dashboard.DragEventDrop})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	board, err := service.Board(context.Background(), viewer)
	require.NoError(t, err)
	ids := make([]string, 0, len(board.Widgets))
	for _, w := range board.Widgets {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"total_clients-2", "total_sessions-3", "total_dreams-1"}, ids)
	assert.Equal(t, dashboard.DragIdle, board.Drag.Phase)
}

func TestHandlersCatalogAndDismiss(t *testing.T) {
	server, _ := newTestServer(t)
	base := server.URL + "/admin/dashboard"

	resp := doJSON(t, http.MethodGet, base+"/catalog", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Widgets []dashboard.CatalogEntry `json:"widgets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.Widgets, len(dashboard.AllWidgetTypes()))

	resp = doJSON(t, http.MethodPost, base+"/metrics/dismiss", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHandleRemoveWidgetUsesCommander(t *testing.T) {
	remove := &stubCommander[commands.RemoveWidgetInput]{}
	api := &Handlers{API: &CommandExecutor{RemoveCommander: remove}}
	req := httptest.NewRequest(http.MethodDelete, "/widgets/w1", nil)
	rec := httptest.NewRecorder()
	api.HandleRemoveWidget(rec, req, "w1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.WidgetID != "w1" {
		t.Fatalf("expected widget id propagation")
	}
}

func TestUnconfiguredOperationReturnsNotImplemented(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/metrics/dismiss", nil)
	rec := httptest.NewRecorder()
	api.HandleDismissMetricsError(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		nil:                            http.StatusOK,
		dashboard.ErrWidgetNotFound:    http.StatusNotFound,
		dashboard.ErrUnknownWidgetType: http.StatusBadRequest,
		dashboard.ErrInvalidSize:       http.StatusBadRequest,
		dashboard.ErrInvalidConfig:     http.StatusBadRequest,
		errors.New("boom"):             http.StatusInternalServerError,
		fmt.Errorf("wrapped: %w", dashboard.ErrWidgetNotFound): http.StatusNotFound,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), "error %v", err)
	}
}

func TestHandleResizeWidgetCyclesOnEmptyChunkedBody(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{
		Metrics:     dashboard.StaticMetricsSource{},
		IDGenerator: func(t dashboard.WidgetType) string { return string(t) + "-1" },
	})
	handlers := &Handlers{API: NewCommandExecutor(service, nil)}
	viewer := dashboard.ViewerContext{}
	created, err := service.AddWidget(context.Background(), dashboard.AddWidgetRequest{Viewer: viewer, Type: dashboard.TypeSymbolDistribution})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/widgets/"+created.ID+"/resize", http.NoBody)
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	rec := httptest.NewRecorder()
	handlers.HandleResizeWidget(rec, req, created.ID)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resized map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resized))
	assert.Equal(t, "large", resized["size"])

	req = httptest.NewRequest(http.MethodPost, "/admin/dashboard/widgets/"+created.ID+"/resize", bytes.NewReader([]byte("{")))
	rec = httptest.NewRecorder()
	handlers.HandleResizeWidget(rec, req, created.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
