package activity

import (
	"context"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
)

// ObjectTypeWidget is the object type recorded for widget mutations.
const ObjectTypeWidget = "dashboard_widget"

// LayoutHook records grid mutations as activity events. It satisfies dashboard.RefreshHook.
type LayoutHook struct {
	Emitter *Emitter
}

// NewLayoutHook builds a hook emitting through the given emitter.
func NewLayoutHook(emitter *Emitter) *LayoutHook {
	return &LayoutHook{Emitter: emitter}
}

var _ dashboard.RefreshHook = (*LayoutHook)(nil)

// WidgetUpdated maps the layout event to a "dashboard.widget.<reason>" activity.
func (h *LayoutHook) WidgetUpdated(ctx context.Context, event dashboard.LayoutEvent) error {
	if h == nil || !h.Emitter.Enabled() {
		return nil
	}
	meta := dashboard.ActivityFromContext(ctx, event)
	return h.Emitter.Emit(ctx, Event{
		Verb:       "dashboard.widget." + event.Reason,
		ActorID:    meta.ActorID,
		UserID:     meta.UserID,
		TenantID:   meta.TenantID,
		ObjectType: ObjectTypeWidget,
		ObjectID:   event.Instance.ID,
		Metadata: map[string]any{
			"storage_key": event.StorageKey,
			"widget_type": string(event.Instance.Type),
			"position":    event.Instance.Position,
			"size":        string(event.Instance.Size),
			"count":       event.Count,
		},
		OccurredAt: event.OccurredAt,
	})
}
