package obs

import (
	"context"

	"github.com/go-chi/chi/v5"
)

type routeOverrideKey struct{}

// WithRoutePattern pins the route label used by logs, metrics and spans. Handlers
// mounted outside chi use it; chi-routed requests resolve the pattern on their own.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routeOverrideKey{}, pattern)
}

// RoutePatternFromContext returns the pinned route, else the pattern chi matched.
// chi fills its route context while dispatching, so middleware only sees the full
// pattern after calling the next handler.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(routeOverrideKey{}).(string); ok && v != "" {
		return v
	}
	if rc := chi.RouteContext(ctx); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

func routeFor(ctx context.Context, fallback string) string {
	if route := RoutePatternFromContext(ctx); route != "" {
		return route
	}
	return fallback
}
