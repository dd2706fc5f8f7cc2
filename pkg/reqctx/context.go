package reqctx

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyAdminToken
)

// RequestMeta holds per-request metadata set by HTTP middleware.
type RequestMeta struct {
	// RequestID is echoed from X-Request-ID or freshly generated.
	RequestID   string
	ClientIP    string
	UserAgent   string
	RequestedAt time.Time
}

// WithRequestMeta stores RequestMeta in the context.
func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

// RequestMetaFromContext retrieves RequestMeta from the context.
// Returns nil, false if not set.
func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	meta, ok := ctx.Value(keyRequestMeta).(*RequestMeta)
	return meta, ok && meta != nil
}

// RequestIDFromContext returns the request ID, or "" when unset.
func RequestIDFromContext(ctx context.Context) string {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok {
		return ""
	}
	return meta.RequestID
}

// LogAttrs returns the request attributes worth attaching to log lines.
func LogAttrs(ctx context.Context) []any {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok {
		return nil
	}
	return []any{
		slog.String("request_id", meta.RequestID),
		slog.String("client_ip", meta.ClientIP),
	}
}

// WithAdminToken records the verified admin session token.
func WithAdminToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyAdminToken, token)
}

// AdminTokenFromContext returns the admin session token, or "" when the
// request is not authenticated.
func AdminTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(keyAdminToken).(string)
	return token
}
