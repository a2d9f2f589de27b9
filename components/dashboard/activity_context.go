package dashboard

import "context"

// ActivityContext captures actor/user/tenant identifiers for activity events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// ActivityFromContext extracts the activity context, falling back to the event user
// as the actor when nothing was attached.
func ActivityFromContext(ctx context.Context, event LayoutEvent) ActivityContext {
	var meta ActivityContext
	if ctx != nil {
		if stored, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
			meta = stored
		}
	}
	if meta.UserID == "" {
		meta.UserID = event.UserID
	}
	if meta.ActorID == "" {
		meta.ActorID = meta.UserID
	}
	return meta
}
