package api

import (
	"context"
)

type keyType string

const (
	adminKey keyType = "admin"
)

// ctxWithAdmin marks the request as coming from an authenticated admin.
func ctxWithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// ctxIsAdmin reports whether the request passed admin authentication.
func ctxIsAdmin(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(adminKey).(bool)
	return ok && isAdmin
}
