package observability

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "aria_session_id"
	turnIDKey    contextKey = "aria_turn_id"
)

// WithSessionID stores the conversation session identifier on the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext extracts the session identifier, if any.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithTurnID stores the per-turn identifier on the context.
func WithTurnID(ctx context.Context, turnID string) context.Context {
	if turnID == "" {
		return ctx
	}
	return context.WithValue(ctx, turnIDKey, turnID)
}

// TurnIDFromContext extracts the turn identifier, if any.
func TurnIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(turnIDKey).(string); ok {
		return v
	}
	return ""
}
