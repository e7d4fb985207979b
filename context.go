package gotrail

import (
	"context"
)

// attributionKey is an unexported context key type.
type attributionKey struct{}
type skipKey struct{}

// attribution carries the per-save fields stamped onto every action of that save.
type attribution struct {
	user    any
	message string
	data    map[string]any
}

// WithUser attaches the identity of whoever performs the next save.
func WithUser(ctx context.Context, user any) context.Context {
	a := extractAttribution(ctx)
	a.user = user
	return context.WithValue(ctx, attributionKey{}, a)
}

// WithMessage attaches a free-text annotation.
func WithMessage(ctx context.Context, msg string) context.Context {
	a := extractAttribution(ctx)
	a.message = msg
	return context.WithValue(ctx, attributionKey{}, a)
}

// WithData attaches opaque metadata. Keys set by earlier calls are kept unless overwritten.
func WithData(ctx context.Context, data map[string]any) context.Context {
	a := extractAttribution(ctx)
	merged := make(map[string]any, len(a.data)+len(data))
	for k, v := range a.data {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	a.data = merged
	return context.WithValue(ctx, attributionKey{}, a)
}

// WithSkip marks the context so saves made with it record no actions.
func WithSkip(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipKey{}, true)
}

func extractAttribution(ctx context.Context) attribution {
	if a, ok := ctx.Value(attributionKey{}).(attribution); ok {
		return a
	}
	return attribution{}
}

func extractSkip(ctx context.Context) bool {
	if v, ok := ctx.Value(skipKey{}).(bool); ok {
		return v
	}
	return false
}
