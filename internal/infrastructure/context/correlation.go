package context

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// CorrelationIDKey is the context key for correlation IDs.
	CorrelationIDKey contextKey = "correlation_id"

	// InteractionIDKey is the context key for the captured interaction's ID.
	InteractionIDKey contextKey = "interaction_id"
)

// WithCorrelationID adds a correlation ID to the context.
// The correlation ID ties the request log line to the chi request ID.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID retrieves the correlation ID from the context.
// Returns an empty string if no correlation ID is present.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithInteractionID records which stored interaction belongs to the request.
func WithInteractionID(ctx context.Context, interactionID string) context.Context {
	return context.WithValue(ctx, InteractionIDKey, interactionID)
}

// GetInteractionID returns the interaction ID, or "" if the request was not captured.
func GetInteractionID(ctx context.Context) string {
	if id, ok := ctx.Value(InteractionIDKey).(string); ok {
		return id
	}
	return ""
}
