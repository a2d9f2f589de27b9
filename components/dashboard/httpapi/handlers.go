package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
	"github.com/goliatone/go-widgetgrid/components/dashboard/commands"
)

// ViewerFunc resolves the viewer for a request.
type ViewerFunc func(*http.Request) dashboard.ViewerContext

// Handlers exposes net/http endpoints backed by an Executor.
type Handlers struct {
	API    Executor
	Viewer ViewerFunc
}

// Register mounts the handlers on mux under base (e.g. "/admin").
func (h *Handlers) Register(mux *http.ServeMux, base string) {
	base = strings.TrimRight(base, "/")
	mux.HandleFunc("GET "+base+"/dashboard/_layout", h.HandleBoard)
	mux.HandleFunc("GET "+base+"/dashboard/catalog", h.HandleCatalog)
	mux.HandleFunc("POST "+base+"/dashboard/widgets", h.HandleAddWidget)
	mux.HandleFunc("POST "+base+"/dashboard/widgets/reorder", h.HandleReorderWidget)
	mux.HandleFunc("DELETE "+base+"/dashboard/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRemoveWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/dashboard/widgets/{id}/resize", func(w http.ResponseWriter, r *http.Request) {
		h.HandleResizeWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/dashboard/drag", h.HandleDragEvent)
	mux.HandleFunc("POST "+base+"/dashboard/metrics/dismiss", h.HandleDismissMetricsError)
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return dashboard.ViewerContext{
		UserID: r.Header.Get("X-User-ID"),
		Locale: r.URL.Query().Get("locale"),
	}
}

func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.API.Board(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.API.Selectable(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"widgets": entries})
}

func (h *Handlers) HandleAddWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.AddWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	created, err := h.API.Add(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	input := commands.RemoveWidgetInput{Viewer: h.viewer(r), WidgetID: widgetID}
	if err := h.API.Remove(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleResizeWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var payload commands.ResizeWidgetInput
	// An empty body, chunked or not, cycles to the next size.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	payload.WidgetID = widgetID
	size, err := h.API.Resize(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"widget_id": widgetID, "size": size})
}

func (h *Handlers) HandleReorderWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.API.Reorder(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleDragEvent(w http.ResponseWriter, r *http.Request) {
	var event dashboard.DragEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	state, err := h.API.Drag(r.Context(), commands.DragEventInput{Viewer: h.viewer(r), Event: event})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) HandleDismissMetricsError(w http.ResponseWriter, r *http.Request) {
	if err := h.API.DismissMetricsError(r.Context(), commands.DismissMetricsErrorInput{Viewer: h.viewer(r)}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}
