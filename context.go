package goClient

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a caller-supplied correlation ID to ctx. The Client
// uses it for the X-Request-ID header and audit events instead of generating
// one; replays after a refresh keep the same ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
