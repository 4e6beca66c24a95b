package middlewares

import (
	"context"

	"github.com/sbilibin2017/gw-recipe-book/internal/models"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	requestLogKey
	identityKey
)

// requestLog collects what inner middlewares learn about a request for the access log.
type requestLog struct {
	user string
}

func (l *requestLog) visitor() string {
	if l.user == "" {
		return "anonymous"
	}
	return l.user
}

// noteUser records the resolved username on the request's access log entry, if any.
func noteUser(ctx context.Context, username string) {
	if l, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		l.user = username
	}
}

// RequestIDFromContext returns the id assigned by LoggingMiddleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by SessionMiddleware.
// Requests that never passed through it are anonymous.
func IdentityFromContext(ctx context.Context) models.Identity {
	id, ok := ctx.Value(identityKey).(models.Identity)
	if !ok {
		return models.Anonymous()
	}
	return id
}
