package userctx

import (
	"context"
	"sync"
)

// Context key type
type contextKey string

const (
	principalKey contextKey = "principal"
	captureKey   contextKey = "principal_capture"
)

// Principal is the identity resolved for the current request, threaded
// through the handler chain instead of an untyped attribute bag.
type Principal struct {
	UserID    int64
	Username  string
	Role      string
	SessionID string
}

// capture lets an outer interceptor observe a principal resolved by inner
// handlers: context values flow inward only, so the audit layer installs a
// capture slot and the authentication gate fills it.
type capture struct {
	mu sync.Mutex
	p  *Principal
}

// WithPrincipal adds the resolved principal to the request context and
// reports it to the enclosing capture slot, if one is installed.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if c, ok := ctx.Value(captureKey).(*capture); ok {
		c.mu.Lock()
		c.p = &p
		c.mu.Unlock()
	}
	return context.WithValue(ctx, principalKey, p)
}

// FromContext retrieves the principal, if one was resolved
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// WithCapture installs a capture slot for principals resolved downstream
func WithCapture(ctx context.Context) context.Context {
	return context.WithValue(ctx, captureKey, &capture{})
}

// Captured returns the principal reported to the capture slot, if any
func Captured(ctx context.Context) (Principal, bool) {
	c, ok := ctx.Value(captureKey).(*capture)
	if !ok {
		return Principal{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.p == nil {
		return Principal{}, false
	}
	return *c.p, true
}
