package core

import (
	"context"

	"github.com/JonMunkholm/userdash/internal/logging"
)

type contextKey string

const (
	ctxKeyIPAddress contextKey = "client_ip"
)

// ContextWithIPAddress adds the client IP to ctx and to its log attributes.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	ctx = logging.WithAttrs(ctx, "ip", ip)
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithEpoch records the column epoch a render pass uses. Formatter
// diagnostics logged with ctx carry the epoch id.
func ContextWithEpoch(ctx context.Context, epochID string) context.Context {
	return logging.WithAttrs(ctx, "epoch", epochID)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
