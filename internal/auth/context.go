package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestContext is the per-request value handed to every operation handler.
type RequestContext struct {
	// Identity is the resolved caller, possibly anonymous.
	Identity Identity

	// RequestID correlates log lines for this request.
	RequestID string
}

type contextKey string

// RequestContextKey is the context key for the per-request RequestContext.
const RequestContextKey contextKey = "agora.request_context"

// NewContext returns a copy of ctx carrying rc.
func NewContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, RequestContextKey, rc)
}

// FromContext returns the RequestContext stored in ctx.
// A context that never passed through Middleware yields an anonymous RequestContext.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(RequestContextKey).(*RequestContext); ok && rc != nil {
		return rc
	}
	return &RequestContext{Identity: Anonymous()}
}

// Middleware resolves the caller once per request and stores a fresh
// RequestContext in the request context. It never rejects a request.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			rc := &RequestContext{
				Identity:  resolver.Resolve(ctx, r.Header),
				RequestID: middleware.GetReqID(ctx),
			}
			next.ServeHTTP(w, r.WithContext(NewContext(ctx, rc)))
		})
	}
}
