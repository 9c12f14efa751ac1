package services

import "context"

type contextKey string

const (
	batchIDKey   contextKey = "batch_id"
	shelfIDKey   contextKey = "shelf_id"
	requestIDKey contextKey = "request_id"
)

// WithBatchID annotates context with the bulk import batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(batchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithShelfID annotates context with the shelf being operated on.
func WithShelfID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, shelfIDKey, id)
}

// ShelfIDFromContext extracts the shelf identifier if present.
func ShelfIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(shelfIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
