package commands

import (
	"context"

	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// Actor carries the audit identifiers attached to activity events.
type Actor struct {
	ActorID  string `json:"actor_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

func withActivity(ctx context.Context, viewer dashboard.ViewerContext, actor Actor) context.Context {
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:  actor.ActorID,
		UserID:   viewer.UserID,
		TenantID: actor.TenantID,
	})
}
